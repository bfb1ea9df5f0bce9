// Package auth provides user identity and the ownership check for
// Switchboard.
//
// It covers three concerns:
//   - Users: the users table behind SQLiteUserRepository
//   - Ownership: Authority answers whether a user owns a device by scanning
//     the user's device list
//   - Bearer tokens: HS256 JWTs whose subject is the user ID
//
// Login, passwords and refresh flows live outside Switchboard. Requests
// arrive with a token minted by that layer (or by the -issue-token flag) and
// are only verified here.
package auth
