package cmd

import (
	"fmt"

	"github.com/sentryvault/sentryvault/internal/crypto"
)

// Get prints one credential entry. The secret is only shown when asked for.
func Get(site string, showSecret bool) {
	store, _, v, passphrase := unlockVault()
	defer store.Close()
	defer crypto.ClearBytes(passphrase)

	entry, err := v.Get(site)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("site:     %s\n", entry.Site)
	fmt.Printf("username: %s\n", entry.Username)
	if showSecret {
		fmt.Printf("secret:   %s\n", entry.Secret)
	} else {
		fmt.Printf("secret:   (hidden, use --show)\n")
	}
	fmt.Printf("modified: %s\n", entry.Modified.Format("2006-01-02 15:04:05"))
}
