// Package models defines the core domain models for Price Diary.
//
// # Models
//
//   - PriceEntry: a single observed price for a product at a store
//   - NewEntryInput: the validated user input an entry is created from
//   - Profile: per-user profile, carries the optional family membership
//   - Family / FamilyMember: a group whose members share their entries
//   - User: an identity registered with the password authenticator
//
// # Dual representation
//
// Every PriceEntry is stored twice: once in the owner's collection and once
// in the global collection. The per-user copy points at the global one via
// GlobalEntryID, the global copy points back via UserEntryID.
//
// # Design Principles
//
// 1. **IDs, not pointers**: relationships are expressed as ID strings
// 2. **Store-assigned timestamps**: CreatedAt/UpdatedAt are set by the store
// 3. **Date-only observations**: PriceEntry.Date is always UTC midnight
package models
