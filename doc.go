// Package jsonvault is an embedded document store kept in a single JSON file.
//
// Documents are JSON objects carrying a string "id" and a "doc_type". The
// whole dataset lives in memory and every mutation rewrites the file
// atomically, optionally encrypted with AES-256-CBC.
//
// Usage:
//
//	db, err := jsonvault.Open("./data.json",
//		jsonvault.WithEncryption(true),
//		jsonvault.WithKey(os.Getenv("JSONVAULT_KEY")),
//	)
//
//	user, err := db.Save(ctx, "user", jsonvault.Document{"name": "Ann"})
//	admins, err := db.Find(ctx, "user", []jsonvault.Filter{jsonvault.Equals("role", "admin")})
//
// An existing file is loaded in the background; every operation waits for
// the load, and WaitReady reports its outcome.
package jsonvault
