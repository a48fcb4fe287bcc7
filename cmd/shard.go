package cmd

import (
	"fmt"
	"os"

	"github.com/sentryvault/sentryvault/internal/crypto"
	"github.com/sentryvault/sentryvault/internal/security"
	"github.com/sentryvault/sentryvault/internal/shard"
	"github.com/sentryvault/sentryvault/internal/vault"
)

// Shard re-saves the vault split into n shares with threshold m and exports
// the share files into dir, one JSON file per shard
func Shard(dir string, n, m int) {
	store, _, v, passphrase := unlockVault()
	defer store.Close()
	defer crypto.ClearBytes(passphrase)

	_, shards, err := store.Save(v, passphrase, vault.SaveOptions{Shares: n, Threshold: m})
	if err != nil {
		HandleError(err)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	validator, err := security.New(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer validator.Close()

	for _, sh := range shards {
		name := fmt.Sprintf("shard-%d.json", sh.Index)
		path, err := validator.Resolve(name)
		if err != nil {
			HandleError(err)
		}
		if err := shard.WriteFile(path, sh); err != nil {
			HandleError(err)
		}
		fmt.Printf("wrote: %s\n", path)
	}

	fmt.Printf("\n%d shards written, any %d reconstruct the vault\n", n, m)
	fmt.Println("Distribute them to separate locations; fewer than the threshold reveal nothing.")
}

// Restore rebuilds the local vault file from gathered shard files
func Restore(files []string) {
	store, _ := OpenStore()
	defer store.Close()

	shards := make([]shard.Shard, 0, len(files))
	for _, file := range files {
		sh, err := shard.ReadFile(file)
		if err != nil {
			HandleError(err)
		}
		shards = append(shards, sh)
	}

	passphrase, _ := GetPassphraseOrExit("Enter passphrase: ", "")
	defer crypto.ClearBytes(passphrase)

	if err := store.Restore(shards, passphrase); err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Vault restored from %d shards\n", len(shards))
}
