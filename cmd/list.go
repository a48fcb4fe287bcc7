package cmd

import (
	"fmt"

	"github.com/sentryvault/sentryvault/internal/crypto"
)

// List prints all site identifiers in the vault
func List() {
	store, _, v, passphrase := unlockVault()
	defer store.Close()
	defer crypto.ClearBytes(passphrase)

	sites := v.Sites()
	if len(sites) == 0 {
		fmt.Println("(vault is empty)")
		return
	}
	for _, site := range sites {
		entry, err := v.Get(site)
		if err != nil {
			continue
		}
		fmt.Printf("%s  (%s)\n", site, entry.Username)
	}
	fmt.Printf("\n%d entries\n", len(sites))
}
