// Package sanitizer normalizes guest and room input before validation and
// storage.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions handle invalid input gracefully, typically by returning
// empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Emails: Trim and lowercase
//   - Labels (amenities, room types): Collapse whitespace and lowercase
//   - Phone numbers: Convert to E.164 format (+[country][number]) using a default region
//   - URLs: Default to HTTPS, lowercase the host, drop tracking parameters
//   - Slices: Remove duplicates and empty values after normalization
//   - Prices: Round to cents, never negative
package sanitizer
