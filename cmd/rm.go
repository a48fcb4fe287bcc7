package cmd

import (
	"fmt"

	"github.com/sentryvault/sentryvault/internal/crypto"
)

// Remove deletes entries and re-encrypts the vault
func Remove(sites []string) {
	store, cfg, v, passphrase := unlockVault()
	defer store.Close()
	defer crypto.ClearBytes(passphrase)

	removed := 0
	for _, site := range sites {
		if err := v.Delete(site); err != nil {
			fmt.Printf("warning: %s\n", err)
			continue
		}
		fmt.Printf("removed: %s\n", site)
		removed++
	}
	if removed == 0 {
		return
	}

	if _, _, err := store.Save(v, passphrase, SaveOptionsFromConfig(cfg)); err != nil {
		HandleError(err)
	}
}
