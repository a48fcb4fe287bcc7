package cmd

import (
	"fmt"
	"os"

	"github.com/sentryvault/sentryvault/internal/crypto"
	"github.com/sentryvault/sentryvault/internal/passgen"
)

// Add stores or replaces one credential entry and re-encrypts the vault
func Add(site, username, secret string, generate bool) {
	store, cfg, v, passphrase := unlockVault()
	defer store.Close()
	defer crypto.ClearBytes(passphrase)

	if generate {
		var err error
		secret, err = passgen.Generate(passgen.DefaultOptions())
		if err != nil {
			HandleError(err)
		}
	}
	if secret == "" {
		raw, err := ReadPassphrase("Secret for " + site + ": ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		secret = string(raw)
		crypto.ClearBytes(raw)
	}

	replacing := false
	if _, err := v.Get(site); err == nil {
		replacing = true
	}

	if err := v.Set(site, username, secret); err != nil {
		HandleError(err)
	}

	if _, _, err := store.Save(v, passphrase, SaveOptionsFromConfig(cfg)); err != nil {
		HandleError(err)
	}

	if replacing {
		fmt.Printf("updated: %s\n", site)
	} else {
		fmt.Printf("added: %s\n", site)
	}
	if generate {
		fmt.Printf("generated secret: %s\n", secret)
	}
}
