// Package generator enumerates candidate mnemonics consistent with a set of
// known word positions. Candidates are sampled lazily, are unique within one
// run and always carry a valid BIP39 checksum.
package generator

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/tyler-smith/go-bip39"
)

var (
	// ErrUnknownWord ...
	ErrUnknownWord = errors.New("word is not in the BIP39 wordlist")
	// ErrInvalidWordPosition ...
	ErrInvalidWordPosition = errors.New("word position must be in range [0, 11]")
	// ErrInvalidMaxCombinations ...
	ErrInvalidMaxCombinations = errors.New("max combinations must be a positive number")
)

const (
	mnemonicLength = 12

	// maxAttemptsPerCandidate bounds the rejection sampling of one candidate.
	// Random fills fail the 4-bit checksum 15 times out of 16, and small
	// candidate spaces eventually run out of unseen phrases, so the sampling
	// must give up at some point instead of spinning forever.
	maxAttemptsPerCandidate = 100000
)

// Opts holds the parameters given to the New method.
type Opts struct {
	// KnownWords maps mnemonic positions (0-11) to their fixed word.
	KnownWords map[int]string
	// MaxCombinations caps the number of candidates produced.
	MaxCombinations int
	// Seed seeds the session-scoped random source. Zero means time-based.
	Seed int64
}

func (o Opts) validate() error {
	if o.MaxCombinations <= 0 {
		return ErrInvalidMaxCombinations
	}
	for position, word := range o.KnownWords {
		if position < 0 || position >= mnemonicLength {
			return ErrInvalidWordPosition
		}
		if !IsWord(word) {
			return ErrUnknownWord
		}
	}
	return nil
}

// Generator produces a lazy, finite, non-restartable sequence of candidate
// mnemonics. It is not safe for concurrent use, one session owns one
// generator.
type Generator struct {
	known         map[int]string
	freePositions []int
	max           int
	rng           *rand.Rand
	seen          map[string]struct{}
	produced      int
	exhausted     bool
}

// New returns a generator for the given word constraints.
func New(opts Opts) (*Generator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	known := make(map[int]string)
	for position, word := range opts.KnownWords {
		known[position] = strings.ToLower(word)
	}

	freePositions := make([]int, 0, mnemonicLength)
	for position := 0; position < mnemonicLength; position++ {
		if _, ok := known[position]; !ok {
			freePositions = append(freePositions, position)
		}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		known:         known,
		freePositions: freePositions,
		max:           opts.MaxCombinations,
		rng:           rand.New(rand.NewSource(seed)),
		seen:          make(map[string]struct{}),
	}, nil
}

// Next returns the next candidate mnemonic. The second return value is false
// once the generator is exhausted, either because the combinations limit was
// reached or because no new valid candidate could be sampled.
func (g *Generator) Next() (string, bool) {
	if g.exhausted || g.produced >= g.max {
		return "", false
	}

	// With all 12 positions fixed the space degenerates to the single phrase
	// given by the caller, produced as-is.
	if len(g.freePositions) == 0 {
		g.exhausted = true
		g.produced++
		return g.fixedPhrase(), true
	}

	wordList := bip39.GetWordList()
	words := make([]string, mnemonicLength)

	for attempt := 0; attempt < maxAttemptsPerCandidate; attempt++ {
		for position, word := range g.known {
			words[position] = word
		}
		for _, position := range g.freePositions {
			words[position] = wordList[g.rng.Intn(len(wordList))]
		}

		mnemonic := strings.Join(words, " ")
		if !bip39.IsMnemonicValid(mnemonic) {
			continue
		}
		if _, dup := g.seen[mnemonic]; dup {
			continue
		}

		g.seen[mnemonic] = struct{}{}
		g.produced++
		return mnemonic, true
	}

	g.exhausted = true
	return "", false
}

// Produced returns the number of candidates yielded so far.
func (g *Generator) Produced() int {
	return g.produced
}

func (g *Generator) fixedPhrase() string {
	words := make([]string, mnemonicLength)
	for position, word := range g.known {
		words[position] = word
	}
	return strings.Join(words, " ")
}

// IsWord returns whether the given word belongs to the canonical BIP39
// english wordlist.
func IsWord(word string) bool {
	_, ok := bip39.GetWordIndex(strings.ToLower(word))
	return ok
}

// WordList returns the canonical 2048-word BIP39 english wordlist.
func WordList() []string {
	return bip39.GetWordList()
}
