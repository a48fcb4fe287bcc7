package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sentryvault/sentryvault/internal/config"
	"github.com/sentryvault/sentryvault/internal/crypto"
	"github.com/sentryvault/sentryvault/internal/guard"
	"github.com/sentryvault/sentryvault/internal/keyring"
	"github.com/sentryvault/sentryvault/internal/shard"
	"github.com/sentryvault/sentryvault/internal/vault"
)

const (
	// VaultFile is the vault database in the current directory
	VaultFile = ".sentryvault"

	// EnvPassphrase supplies the passphrase non-interactively
	EnvPassphrase = "SENTRYVAULT_PASSPHRASE"
)

// Source records where a passphrase came from, so commands know whether to
// offer saving it to the keyring afterwards
type Source int

const (
	SourceEnv Source = iota
	SourceKeyring
	SourcePrompt
)

// OpenStore opens the vault database with configuration applied
func OpenStore() (*vault.Store, *config.Config) {
	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	store, err := vault.NewStore(VaultFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if err := store.SetParams(cfg.Params()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	gate, err := guard.New(cfg.GuardPolicy())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	store.SetGuard(gate)

	return store, cfg
}

// SaveOptionsFromConfig maps the configured sharding defaults
func SaveOptionsFromConfig(cfg *config.Config) vault.SaveOptions {
	return vault.SaveOptions{
		Shares:    cfg.Sharding.Shares,
		Threshold: cfg.Sharding.Threshold,
	}
}

// GetPassphrase retrieves the passphrase from the environment, the OS
// keyring, or an interactive prompt, in that order. The caller is
// responsible for calling crypto.ClearBytes on the returned passphrase.
func GetPassphrase(prompt, vaultID string) ([]byte, Source, error) {
	if env := os.Getenv(EnvPassphrase); env != "" {
		return []byte(env), SourceEnv, nil
	}

	if vaultID != "" {
		if stored, err := keyring.GetPassphrase(vaultID); err == nil {
			return []byte(stored), SourceKeyring, nil
		}
	}

	passphrase, err := ReadPassphrase(prompt)
	if err != nil {
		return nil, SourcePrompt, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return passphrase, SourcePrompt, nil
}

// GetPassphraseOrExit is like GetPassphrase but exits on error
func GetPassphraseOrExit(prompt, vaultID string) ([]byte, Source) {
	passphrase, source, err := GetPassphrase(prompt, vaultID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return passphrase, source
}

// OfferToSavePassphrase asks whether a manually entered passphrase should
// go into the OS keyring
func OfferToSavePassphrase(vaultID string, passphrase []byte) {
	fmt.Print("Save passphrase to OS keyring? [y/N]: ")
	var answer string
	fmt.Scanln(&answer)
	if answer != "y" && answer != "Y" {
		return
	}
	if err := keyring.SavePassphrase(vaultID, string(passphrase)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save to keyring: %s\n", err)
		return
	}
	fmt.Println("Passphrase saved to keyring")
}

// HandleError handles common errors consistently
func HandleError(err error) {
	switch {
	case errors.Is(err, vault.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: vault not initialized\n")
		fmt.Fprintf(os.Stderr, "Run 'sentryvault init' first\n")
	case errors.Is(err, vault.ErrAlreadyExists):
		fmt.Fprintf(os.Stderr, "Error: %s already exists in this directory\n", VaultFile)
		fmt.Fprintf(os.Stderr, "Use 'sentryvault status' to see current state\n")
	case errors.Is(err, vault.ErrUnlockFailed):
		fmt.Fprintf(os.Stderr, "Error: unable to unlock vault\n")
	case errors.Is(err, vault.ErrStateConflict):
		fmt.Fprintf(os.Stderr, "Error: another save is in progress, try again\n")
	case errors.Is(err, guard.ErrPolicyDenied):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, shard.ErrInvalidShard):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, vault.ErrEntryNotFound):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

// unlockVault opens the store and unlocks it, handling the keyring offer.
// Both store and vault are returned unlocked; the caller closes the store.
func unlockVault() (*vault.Store, *config.Config, *vault.Vault, []byte) {
	store, cfg := OpenStore()

	vaultID, _ := store.VaultID()
	passphrase, source := GetPassphraseOrExit("Enter passphrase: ", vaultID)

	v, err := store.Open(passphrase)
	if err != nil {
		crypto.ClearBytes(passphrase)
		store.Close()
		HandleError(err)
	}

	if source == SourcePrompt {
		OfferToSavePassphrase(vaultID, passphrase)
	}
	return store, cfg, v, passphrase
}
