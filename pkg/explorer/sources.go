package explorer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seedrescue/recoveryd/pkg/httputil"
)

// Default base URLs of the reference sources.
const (
	DefaultBlockstreamURL    = "https://blockstream.info"
	DefaultBlockchainInfoURL = "https://blockchain.info"
	DefaultBlockCypherURL    = "https://api.blockcypher.com"
	DefaultSoChainURL        = "https://sochain.com"
)

// NewBlockstreamSource returns the esplora-style source of blockstream.info.
// Amounts are satoshi integers split in funded/spent chain stats.
func NewBlockstreamSource(
	baseURL string, timeout time.Duration, client *httputil.Client,
) (Source, error) {
	return NewSource(SourceOpts{
		Name:        "blockstream",
		URLTemplate: baseURL + "/api/address/%s",
		Timeout:     timeout,
		Client:      client,
		Parse:       parseBlockstreamBalance,
	})
}

// NewBlockchainInfoSource returns the blockchain.info source. Amounts are
// satoshi integers.
func NewBlockchainInfoSource(
	baseURL string, timeout time.Duration, client *httputil.Client,
) (Source, error) {
	return NewSource(SourceOpts{
		Name:        "blockchain.info",
		URLTemplate: baseURL + "/rawaddr/%s",
		Timeout:     timeout,
		Client:      client,
		Parse:       parseBlockchainInfoBalance,
	})
}

// NewBlockCypherSource returns the blockcypher.com source. Amounts are
// satoshi integers.
func NewBlockCypherSource(
	baseURL string, timeout time.Duration, client *httputil.Client,
) (Source, error) {
	return NewSource(SourceOpts{
		Name:        "blockcypher",
		URLTemplate: baseURL + "/v1/btc/main/addrs/%s/balance",
		Timeout:     timeout,
		Client:      client,
		Parse:       parseBlockCypherBalance,
	})
}

// NewSoChainSource returns the sochain.com source. Amounts are BTC decimal
// strings, unlike the satoshi-based sources.
func NewSoChainSource(
	baseURL string, timeout time.Duration, client *httputil.Client,
) (Source, error) {
	return NewSource(SourceOpts{
		Name:        "sochain",
		URLTemplate: baseURL + "/api/v2/get_address_balance/BTC/%s",
		Timeout:     timeout,
		Client:      client,
		Parse:       parseSoChainBalance,
	})
}

type blockstreamAddress struct {
	ChainStats struct {
		FundedTxoSum int64 `json:"funded_txo_sum"`
		SpentTxoSum  int64 `json:"spent_txo_sum"`
	} `json:"chain_stats"`
}

func parseBlockstreamBalance(body []byte, _ string) (decimal.Decimal, error) {
	var payload blockstreamAddress
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, err
	}
	satoshi := payload.ChainStats.FundedTxoSum - payload.ChainStats.SpentTxoSum
	if satoshi < 0 {
		return decimal.Zero, fmt.Errorf("negative balance %d", satoshi)
	}
	return btcFromSatoshi(satoshi), nil
}

type blockchainInfoAddress struct {
	FinalBalance *int64 `json:"final_balance"`
}

func parseBlockchainInfoBalance(body []byte, _ string) (decimal.Decimal, error) {
	var payload blockchainInfoAddress
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, err
	}
	if payload.FinalBalance == nil {
		return decimal.Zero, errors.New("missing final_balance field")
	}
	return btcFromSatoshi(*payload.FinalBalance), nil
}

type blockCypherAddress struct {
	FinalBalance *int64 `json:"final_balance"`
}

func parseBlockCypherBalance(body []byte, _ string) (decimal.Decimal, error) {
	var payload blockCypherAddress
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, err
	}
	if payload.FinalBalance == nil {
		return decimal.Zero, errors.New("missing final_balance field")
	}
	return btcFromSatoshi(*payload.FinalBalance), nil
}

type soChainAddress struct {
	Status string `json:"status"`
	Data   struct {
		ConfirmedBalance string `json:"confirmed_balance"`
	} `json:"data"`
}

func parseSoChainBalance(body []byte, _ string) (decimal.Decimal, error) {
	var payload soChainAddress
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, err
	}
	if payload.Status != "success" {
		return decimal.Zero, fmt.Errorf("unexpected status %q", payload.Status)
	}
	balance, err := decimal.NewFromString(payload.Data.ConfirmedBalance)
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}
