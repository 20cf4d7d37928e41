// Package domain defines the core domain models for gymadmin.
//
// Domain models are pure value objects without any IO dependencies.
// This package contains:
//
//   - Session: client authentication state and the staff principal
//   - Member, Membership, Product, Email*: backend entities and their
//     create/update payloads with client-side validation
//   - ValidMemberCode: the single rule for 8-character check-in codes
//   - Errors: domain error codes (GYM-<AREA>-<NNNN>)
package domain
