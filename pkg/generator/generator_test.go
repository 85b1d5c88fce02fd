package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
)

var fixedMnemonic = map[int]string{
	0: "abandon", 1: "abandon", 2: "abandon", 3: "abandon",
	4: "abandon", 5: "abandon", 6: "abandon", 7: "abandon",
	8: "abandon", 9: "abandon", 10: "abandon", 11: "about",
}

func TestNextProducesValidMnemonics(t *testing.T) {
	g, err := New(Opts{
		KnownWords:      map[int]string{0: "abandon", 5: "zoo"},
		MaxCombinations: 20,
		Seed:            42,
	})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		mnemonic, ok := g.Next()
		require.True(t, ok)
		assert.True(t, bip39.IsMnemonicValid(mnemonic))

		words := strings.Split(mnemonic, " ")
		require.Len(t, words, 12)
		assert.Equal(t, "abandon", words[0])
		assert.Equal(t, "zoo", words[5])
	}

	_, ok := g.Next()
	assert.False(t, ok)
}

func TestNextWithAllPositionsKnown(t *testing.T) {
	g, err := New(Opts{
		KnownWords:      fixedMnemonic,
		MaxCombinations: 100,
	})
	require.NoError(t, err)

	mnemonic, ok := g.Next()
	require.True(t, ok)
	assert.Equal(
		t,
		"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
		mnemonic,
	)

	_, ok = g.Next()
	assert.False(t, ok)
	assert.Equal(t, 1, g.Produced())
}

func TestNextNeverRepeatsWithinOneRun(t *testing.T) {
	g, err := New(Opts{
		KnownWords:      map[int]string{0: "legal"},
		MaxCombinations: 50,
		Seed:            7,
	})
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for {
		mnemonic, ok := g.Next()
		if !ok {
			break
		}
		_, dup := seen[mnemonic]
		require.False(t, dup, "duplicate candidate %s", mnemonic)
		seen[mnemonic] = struct{}{}
	}
	assert.LessOrEqual(t, len(seen), 50)
}

func TestSameSeedProducesSameSequence(t *testing.T) {
	newGen := func() *Generator {
		g, err := New(Opts{
			KnownWords:      map[int]string{3: "winner"},
			MaxCombinations: 10,
			Seed:            1234,
		})
		require.NoError(t, err)
		return g
	}

	first, second := newGen(), newGen()
	for i := 0; i < 10; i++ {
		m1, ok1 := first.Next()
		m2, ok2 := second.Next()
		require.True(t, ok1)
		require.True(t, ok2)
		assert.Equal(t, m1, m2)
	}
}

func TestFailingNew(t *testing.T) {
	tests := []struct {
		name string
		opts Opts
		err  error
	}{
		{
			name: "unknown word",
			opts: Opts{KnownWords: map[int]string{0: "notaword"}, MaxCombinations: 10},
			err:  ErrUnknownWord,
		},
		{
			name: "position out of range",
			opts: Opts{KnownWords: map[int]string{12: "abandon"}, MaxCombinations: 10},
			err:  ErrInvalidWordPosition,
		},
		{
			name: "negative position",
			opts: Opts{KnownWords: map[int]string{-1: "abandon"}, MaxCombinations: 10},
			err:  ErrInvalidWordPosition,
		},
		{
			name: "zero max combinations",
			opts: Opts{KnownWords: map[int]string{0: "abandon"}},
			err:  ErrInvalidMaxCombinations,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestIsWord(t *testing.T) {
	assert.True(t, IsWord("abandon"))
	assert.True(t, IsWord("Zoo"))
	assert.False(t, IsWord("notaword"))
	assert.False(t, IsWord(""))
}

func TestWordList(t *testing.T) {
	assert.Len(t, WordList(), 2048)
}
