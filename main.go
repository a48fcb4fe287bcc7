package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sentryvault/sentryvault/cmd"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
	case "add":
		runAdd(os.Args[2:])
	case "get":
		runGet(os.Args[2:])
	case "ls", "list":
		runList(os.Args[2:])
	case "rm":
		runRm(os.Args[2:])
	case "gen":
		runGen(os.Args[2:])
	case "passwd":
		runPasswd(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	case "shard":
		runShard(os.Args[2:])
	case "restore":
		runRestore(os.Args[2:])
	case "keyring":
		runKeyring(os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Init()
}

func runAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	username := fs.String("user", "", "Username for the entry")
	secret := fs.String("secret", "", "Secret value (prompted when omitted)")
	generate := fs.Bool("gen", false, "Generate the secret instead of prompting")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: sentryvault add [--user <name>] [--secret <value>|--gen] <site>")
		os.Exit(1)
	}

	cmd.Add(fs.Arg(0), *username, *secret, *generate)
}

func runGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	show := fs.Bool("show", false, "Print the secret value")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: sentryvault get [--show] <site>")
		os.Exit(1)
	}

	cmd.Get(fs.Arg(0), *show)
}

func runList(args []string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.List()
}

func runRm(args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sentryvault rm <site> [site...]")
		os.Exit(1)
	}

	cmd.Remove(fs.Args())
}

func runGen(args []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	length := fs.Int("length", 16, "Secret length")
	noUpper := fs.Bool("no-upper", false, "Exclude uppercase letters")
	noDigits := fs.Bool("no-digits", false, "Exclude digits")
	noSymbols := fs.Bool("no-symbols", false, "Exclude symbols")
	pin := fs.Bool("pin", false, "Generate a numeric PIN")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Gen(*length, *noUpper, *noDigits, *noSymbols, *pin)
}

func runPasswd(args []string) {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Passwd()
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Status()
}

func runShard(args []string) {
	fs := flag.NewFlagSet("shard", flag.ExitOnError)
	dir := fs.String("dir", "shards", "Directory to write shard files into")
	n := fs.Int("n", 5, "Total number of shards")
	m := fs.Int("m", 3, "Threshold needed to reconstruct")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Shard(*dir, *n, *m)
}

func runRestore(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sentryvault restore <shard-file> [shard-file...]")
		os.Exit(1)
	}

	cmd.Restore(fs.Args())
}

func runKeyring(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sentryvault keyring <save|forget|status>")
		os.Exit(1)
	}
	switch args[0] {
	case "save":
		cmd.KeyringSave()
	case "forget":
		cmd.KeyringDelete()
	case "status":
		cmd.KeyringStatus()
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring action: %s\n", args[0])
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("sentryvault - Local-first credential vault with threshold sharding")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sentryvault <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init        Create a .sentryvault vault in current directory")
	fmt.Println("  add         Store or replace a credential entry")
	fmt.Println("  get         Show a credential entry")
	fmt.Println("  ls, list    List all entries")
	fmt.Println("  rm          Remove entries")
	fmt.Println("  gen         Generate a secret without storing it")
	fmt.Println("  passwd      Change the vault passphrase")
	fmt.Println("  status      Show vault status (no passphrase needed)")
	fmt.Println("  shard       Split the vault into N shares, threshold M")
	fmt.Println("  restore     Rebuild the vault from shard files")
	fmt.Println("  keyring     Manage the passphrase in the OS keyring")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  sentryvault init                         # Create new vault")
	fmt.Println("  sentryvault add --user alice example.com # Add an entry")
	fmt.Println("  sentryvault shard -n 5 -m 3              # Split into 5 shares, any 3 restore")
	fmt.Println("  sentryvault restore shards/shard-*.json  # Rebuild from shares")
	fmt.Println()
	fmt.Println("Use 'sentryvault help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("sentryvault init")
		fmt.Println()
		fmt.Println("Creates a .sentryvault vault file in the current directory.")
		fmt.Println("Prompts for a passphrase that protects all entries.")
		fmt.Println("The passphrase is not stored anywhere - you must remember it.")
	case "add":
		fmt.Println("sentryvault add [--user <name>] [--secret <value>|--gen] <site>")
		fmt.Println()
		fmt.Println("Stores or replaces the credential entry for a site and re-encrypts")
		fmt.Println("the whole vault. With --gen a random secret is generated and printed.")
		fmt.Println("Without --secret or --gen the secret is prompted without echo.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  sentryvault add --user alice example.com")
		fmt.Println("  sentryvault add --user bob --gen other.org")
	case "get":
		fmt.Println("sentryvault get [--show] <site>")
		fmt.Println()
		fmt.Println("Shows the entry for a site. The secret stays hidden unless --show")
		fmt.Println("is given.")
	case "ls", "list":
		fmt.Println("sentryvault ls")
		fmt.Println()
		fmt.Println("Lists all sites and usernames in the vault.")
	case "rm":
		fmt.Println("sentryvault rm <site> [site...]")
		fmt.Println()
		fmt.Println("Removes entries and re-encrypts the vault.")
	case "gen":
		fmt.Println("sentryvault gen [--length <n>] [--no-upper] [--no-digits] [--no-symbols] [--pin]")
		fmt.Println()
		fmt.Println("Generates a random secret and prints it. Does not touch the vault.")
	case "passwd":
		fmt.Println("sentryvault passwd")
		fmt.Println()
		fmt.Println("Changes the vault passphrase. The vault is re-encrypted under a")
		fmt.Println("fresh salt; previously exported shards become stale.")
	case "status":
		fmt.Println("sentryvault status")
		fmt.Println()
		fmt.Println("Shows vault ID, timestamps, blob size and shard state.")
		fmt.Println("Does not require a passphrase.")
	case "shard":
		fmt.Println("sentryvault shard [--dir <path>] [-n <total>] [-m <threshold>]")
		fmt.Println()
		fmt.Println("Re-saves the vault split into n shares with threshold m and writes")
		fmt.Println("one JSON shard file per share into the directory. Any m shards")
		fmt.Println("reconstruct the vault; fewer than m reveal nothing about it.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  sentryvault shard --dir backups -n 5 -m 3")
	case "restore":
		fmt.Println("sentryvault restore <shard-file> [shard-file...]")
		fmt.Println()
		fmt.Println("Gathers shard files, reconstructs the encrypted vault, verifies the")
		fmt.Println("passphrase unlocks it, and replaces the local vault file.")
	case "keyring":
		fmt.Println("sentryvault keyring <save|forget|status>")
		fmt.Println()
		fmt.Println("Manages the vault passphrase in the OS keyring, keyed by vault ID.")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
