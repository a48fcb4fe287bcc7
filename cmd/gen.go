package cmd

import (
	"fmt"

	"github.com/sentryvault/sentryvault/internal/passgen"
)

// Gen prints a freshly generated secret without touching the vault
func Gen(length int, noUpper, noDigits, noSymbols, pin bool) {
	if pin {
		out, err := passgen.GeneratePIN(length)
		if err != nil {
			HandleError(err)
		}
		fmt.Println(out)
		return
	}

	out, err := passgen.Generate(passgen.Options{
		Length:  length,
		Upper:   !noUpper,
		Digits:  !noDigits,
		Symbols: !noSymbols,
	})
	if err != nil {
		HandleError(err)
	}
	fmt.Println(out)
}
