package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sentryvault/sentryvault/internal/keyring"
	"github.com/sentryvault/sentryvault/internal/vault"
)

// Status shows the current state of the vault. No passphrase required.
func Status() {
	if _, err := os.Stat(VaultFile); err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("No %s file found in current directory\n", VaultFile)
			fmt.Println("Run 'sentryvault init' to create one")
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	store, _ := OpenStore()
	defer store.Close()

	info, err := store.Info()
	if err != nil {
		if errors.Is(err, vault.ErrNotInitialized) {
			fmt.Printf("%s: present but not initialized\n", VaultFile)
			return
		}
		HandleError(err)
	}

	fmt.Printf("vault:    %s\n", info.VaultID)
	fmt.Printf("created:  %s\n", info.Created.Format(time.RFC3339))
	fmt.Printf("modified: %s\n", info.Modified.Format(time.RFC3339))
	fmt.Printf("blob:     %d bytes (argon2id, AES-256-GCM)\n", info.BlobSize)
	if info.ShardCount > 0 {
		fmt.Printf("shards:   %d stored from last sharded save\n", info.ShardCount)
	} else {
		fmt.Println("shards:   none")
	}
	if info.VaultID != "" && keyring.HasPassphrase(info.VaultID) {
		fmt.Println("keyring:  passphrase stored")
	} else {
		fmt.Println("keyring:  passphrase not stored")
	}
}
