package cmd

import (
	"fmt"
	"os"

	"github.com/sentryvault/sentryvault/internal/crypto"
	"github.com/sentryvault/sentryvault/internal/keyring"
)

// Passwd changes the vault passphrase, re-encrypting under a fresh salt
func Passwd() {
	store, cfg := OpenStore()
	defer store.Close()

	oldPass, err := ReadPassphrase("Current passphrase: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(oldPass)

	fmt.Println("New passphrase:")
	newPass, err := ReadPassphraseConfirm()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(newPass)

	if err := store.ChangePassphrase(oldPass, newPass, SaveOptionsFromConfig(cfg)); err != nil {
		HandleError(err)
	}

	// A cached passphrase is now stale.
	if vaultID, err := store.VaultID(); err == nil && keyring.HasPassphrase(vaultID) {
		if err := keyring.DeletePassphrase(vaultID); err == nil {
			fmt.Println("Stale keyring entry removed")
		}
	}

	fmt.Println("✓ Passphrase changed")
	fmt.Println("Previously exported shards no longer match this vault.")
}
