// Package appticket decrypts and verifies Steam encrypted app tickets, allowing a game
// server to authorize a connecting client without contacting Steam.
//
// An encrypted app ticket is obtained by the client from Steam, with optional user data,
// and sent to the server. The server shares a symmetric key with Steam, which is enough to
// decrypt the ticket and check its integrity. The decoded ticket tells who the holder is,
// whether the license is borrowed or temporary and whether the holder is VAC banned.
// The ownership section may also be signed by Steam: that signature can be verified with
// the public key returned by SteamPublicKey, but cannot be forged without Steam's private
// key. Signature checks are advisory and never make decoding fail.
//
// Most callers only need DecryptAndDecode, or a Verifier configured once per deployment.
//
// This package comes with a CLI. You can install it like this:
//   go install github.com/connesc/appticket/cmd/appticket@latest
package appticket
