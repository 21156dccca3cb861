// Package encryption processes batches of files with the counter-block cipher.
// Files are encrypted, decrypted (whole or through a head/tail window) or searched concurrently,
// outputs are written atomically, and every file's outcome is reported individually.
package encryption
