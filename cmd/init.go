package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sentryvault/sentryvault/internal/crypto"
	"github.com/sentryvault/sentryvault/internal/vault"
)

// Init creates a new vault in the current directory
func Init() {
	store, _ := OpenStore()
	defer store.Close()

	var passphrase []byte
	var err error
	if env := os.Getenv(EnvPassphrase); env != "" {
		passphrase = []byte(env)
	} else {
		passphrase, err = ReadPassphraseConfirm()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}
	defer crypto.ClearBytes(passphrase)

	if err := store.Init(passphrase); err != nil {
		if errors.Is(err, vault.ErrAlreadyExists) {
			fmt.Fprintf(os.Stderr, "Error: %s already exists in this directory\n", VaultFile)
			fmt.Fprintf(os.Stderr, "Use 'sentryvault status' to see current state\n")
			os.Exit(1)
		}
		HandleError(err)
	}

	fmt.Printf("✓ Initialized %s\n", VaultFile)
	fmt.Println("The passphrase is not stored anywhere - you must remember it.")
}
