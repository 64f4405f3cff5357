// Package cli implements the cmsauth command-line client.
//
// Sub-commands:
//
//	register   prompt for username, email and password, create the account
//	login      prompt for username and password, print the issued token
//	me         show the account bound to the token (-token or CMS_TOKEN)
//	ping       check that the server answers
//
// Passwords are read from the terminal without echo and wiped after use.
package cli
