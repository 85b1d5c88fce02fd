package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/seedrescue/recoveryd/pkg/generator"
)

var validateword = cli.Command{
	Name:      "validate-word",
	Usage:     "check whether a word belongs to the BIP39 wordlist",
	ArgsUsage: "<word>",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return fmt.Errorf("expected exactly one word")
		}
		word := strings.ToLower(ctx.Args().First())
		if generator.IsWord(word) {
			fmt.Printf("%s: valid\n", word)
			return nil
		}
		return fmt.Errorf("%s: not in the BIP39 wordlist", word)
	},
}

var wordlist = cli.Command{
	Name:  "wordlist",
	Usage: "print the BIP39 english wordlist",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "print only the first N words",
		},
	},
	Action: func(ctx *cli.Context) error {
		words := generator.WordList()
		limit := ctx.Int("limit")
		if limit > 0 && limit < len(words) {
			words = words[:limit]
		}
		for _, word := range words {
			fmt.Println(word)
		}
		return nil
	},
}
