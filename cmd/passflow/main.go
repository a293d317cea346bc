package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/walruspass/walruspass/common/bootstrap"
	"github.com/walruspass/walruspass/common/clients"
	"github.com/walruspass/walruspass/common/policy"
	"github.com/walruspass/walruspass/common/workflow"
)

// 1 SUI = 10^9 MIST
const mistPerSui = 1_000_000_000

func main() {
	app := &cli.App{
		Name:  "passflow",
		Usage: "drive the WalrusPass listing workflow from the command line",
		Commands: []*cli.Command{
			listCommand(),
			downloadCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "passflow: %v\n", err)
		os.Exit(1)
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "upload a file into a private vault and mint its NFT listing",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "wallet", Usage: "wallet address that owns the listing", Required: true},
			&cli.StringFlag{Name: "wallet-url", Usage: "local wallet signer endpoint", Value: "http://localhost:9000"},
			&cli.StringFlag{Name: "gateway-url", Usage: "metadata gateway base URL", Value: "http://localhost:8080"},
			&cli.StringFlag{Name: "password", Usage: "encryption password (omit when keys already exist)"},
			&cli.StringFlag{Name: "vault-name", Usage: "name of the vault to create", Value: "walruspass"},
			&cli.StringFlag{Name: "file", Usage: "path of the file to upload", Required: true},
			&cli.StringFlag{Name: "name", Usage: "NFT name"},
			&cli.StringFlag{Name: "description", Usage: "NFT description"},
			&cli.StringFlag{Name: "price", Usage: "listing price in SUI, e.g. 0.5", Required: true},
		},
		Action: runList,
	}
}

func runList(c *cli.Context) error {
	ctx := c.Context

	components, err := bootstrap.Setup(ctx, "passflow",
		bootstrap.WithoutDB(),
		bootstrap.WithoutTelemetry(),
	)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer components.Shutdown(ctx)

	cfg := components.Config
	log := components.Logger

	price, err := parseSuiPrice(c.String("price"))
	if err != nil {
		return err
	}

	filePath := c.String("file")
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(filePath))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	httpClient := clients.NewHTTPClient(&http.Client{Timeout: 60 * time.Second}, log)
	storage := clients.NewStorageClient(httpClient, cfg.Storage.BaseURL, cfg.Storage.APIKey, log)
	gateway := clients.NewGatewayClient(httpClient, c.String("gateway-url"), log)
	chain := clients.NewChainClient(&http.Client{Timeout: 60 * time.Second},
		cfg.Chain.RPCURL, cfg.Chain.PackageID, cfg.Chain.ListingID, cfg.Chain.GasBudget, log)

	pol, err := policy.Compile(cfg.Chain.ListingPolicy)
	if err != nil {
		return fmt.Errorf("compile listing policy: %w", err)
	}

	password := c.String("password")
	session := workflow.Session{
		WalletAddress:   c.String("wallet"),
		EncryptionReady: password == "",
		Signer:          newWalletSigner(c.String("wallet-url")),
	}

	flow := workflow.New(session, storage, gateway, chain, pol, log)

	if err := flow.Begin(); err != nil {
		return err
	}
	if flow.Step() == workflow.StepEncryptionSetup {
		if err := flow.SetupEncryption(ctx, password); err != nil {
			return err
		}
	}
	if err := flow.CreateVault(ctx, c.String("vault-name"), true); err != nil {
		return err
	}
	if err := flow.UploadFile(ctx, filepath.Base(filePath), mimeType, info.Size(), f); err != nil {
		return err
	}

	name := c.String("name")
	if name == "" {
		name = filepath.Base(filePath)
	}

	result, err := flow.MintAndList(ctx, name, c.String("description"), price)
	if err != nil {
		return err
	}

	fmt.Printf("digest:    %s\n", result.Digest)
	if result.ObjectID != "" {
		fmt.Printf("object id: %s\n", result.ObjectID)
	}
	if result.Warning != "" {
		fmt.Printf("warning:   %s\n", result.Warning)
	}
	return nil
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "download a file from storage",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file-id", Usage: "storage file id", Required: true},
			&cli.StringFlag{Name: "output", Usage: "output path", Required: true},
		},
		Action: runDownload,
	}
}

func runDownload(c *cli.Context) error {
	ctx := c.Context

	components, err := bootstrap.Setup(ctx, "passflow",
		bootstrap.WithoutDB(),
		bootstrap.WithoutTelemetry(),
	)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer components.Shutdown(ctx)

	cfg := components.Config
	log := components.Logger

	httpClient := clients.NewHTTPClient(&http.Client{Timeout: 60 * time.Second}, log)
	storage := clients.NewStorageClient(httpClient, cfg.Storage.BaseURL, cfg.Storage.APIKey, log)

	// The shared demo password unlocks the public download path when set
	if cfg.Storage.DemoPassword != "" {
		if err := storage.SetupEncryption(ctx, cfg.Storage.DemoPassword); err != nil {
			return fmt.Errorf("setup encryption: %w", err)
		}
	}

	data, err := storage.DownloadFile(ctx, c.String("file-id"))
	if err != nil {
		return fmt.Errorf("download file: %w", err)
	}

	if err := os.WriteFile(c.String("output"), data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("wrote %d bytes to %s\n", len(data), c.String("output"))
	return nil
}

// parseSuiPrice converts a decimal SUI amount into MIST. Only this boundary
// deals in decimals; everything downstream uses smallest units.
func parseSuiPrice(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("price is required")
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 9 {
		return 0, fmt.Errorf("price has more than 9 decimal places: %s", s)
	}
	frac += strings.Repeat("0", 9-len(frac))

	wholeVal, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price: %s", s)
	}
	fracVal, err := strconv.ParseUint(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price: %s", s)
	}
	return wholeVal*mistPerSui + fracVal, nil
}

// walletSigner submits unsigned transactions to a local wallet process that
// holds the key material and executes them on chain.
type walletSigner struct {
	http *http.Client
	url  string
}

func newWalletSigner(url string) *walletSigner {
	return &walletSigner{
		http: &http.Client{Timeout: 60 * time.Second},
		url:  strings.TrimSuffix(url, "/"),
	}
}

func (s *walletSigner) SignAndExecute(ctx context.Context, tx *clients.Transaction) (string, error) {
	payload, err := json.Marshal(tx)
	if err != nil {
		return "", fmt.Errorf("encode transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"/sign-and-execute", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build wallet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("wallet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wallet returned status %d", resp.StatusCode)
	}

	var body struct {
		Digest string `json:"digest"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode wallet response: %w", err)
	}
	if body.Digest == "" {
		return "", fmt.Errorf("wallet returned no digest")
	}
	return body.Digest, nil
}
