// Package main provides the assist engine CLI entrypoint.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/cache"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/config"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/embedding"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/language"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/observability"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/personalization"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/policy"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/ranking"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/resolve"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/templates"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	noColor    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "assist-engine-cli",
	Short: "Assist engine CLI for chat resolution and policy administration",
	Long: `Assist engine CLI provides commands for exercising the fallback
resolution cascade locally and managing shop policy caches.

Use this tool to:
- Resolve a chat turn against a product catalog file
- Detect the language of a shopper message
- Fetch a shop's policies through the cache

All commands support --json for automation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Observability.LogLevel,
			Format:      logFormat,
			ServiceName: "assist-engine-cli",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newDetectCmd())
	rootCmd.AddCommand(newPolicyCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildResolver wires an in-process resolver from the loaded config.
func buildResolver() (*resolve.Resolver, cache.Client, error) {
	store := cache.NewMemoryClient(cfg.Cache.MaxEntries)

	templateStore, err := templates.NewStore()
	if err != nil {
		return nil, nil, err
	}

	policyCache := policy.NewCache(logger, store, policy.NewHTTPFetcher(policy.FetcherConfig{
		EndpointTemplate: cfg.Policy.EndpointTemplate,
		Timeout:          cfg.Policy.FetchTimeout,
	}), policy.CacheConfig{
		TTL:          cfg.Policy.TTL,
		FetchTimeout: cfg.Policy.FetchTimeout,
	})

	var searcher embedding.Searcher
	if cfg.SemanticEnabled() {
		embedder, err := embedding.NewClient(embedding.Config{
			APIKey:    cfg.Embedding.APIKey,
			Model:     cfg.Embedding.Model,
			BaseURL:   cfg.Embedding.BaseURL,
			Dimension: cfg.Embedding.Dimension,
			Timeout:   cfg.Embedding.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		searcher = embedding.NewVectorSearcher(embedder)
	}

	engine := ranking.NewEngine(searcher)
	svc := personalization.NewRuleService(store, cfg.Personalization.SessionTTL)
	booster := personalization.NewBooster(logger, svc)
	composer := resolve.NewComposer(logger, templateStore, language.NewDetector(), policyCache, cfg.Policy.PreviewLength)
	delegate := resolve.NewDelegateClient(resolve.DelegateConfig{
		Endpoint: cfg.Delegation.Endpoint,
		APIKey:   cfg.Delegation.APIKey,
		Timeout:  cfg.Delegation.Timeout,
	}, logger)

	return resolve.NewResolver(logger, svc, engine, booster, composer, delegate), store, nil
}

// newResolveCmd creates the resolve subcommand.
func newResolveCmd() *cobra.Command {
	var (
		message     string
		shop        string
		locale      string
		sessionID   string
		productFile string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a chat turn through the fallback cascade",
		Long: `Resolve runs one shopper message through the full cascade using an
in-process engine: remote delegation (if configured), semantic ranking,
keyword ranking, generic sampling, and localized composition.

The product catalog is read from a JSON file holding an array of products:
[{"id": "...", "title": "...", "handle": "...", "price": 29.9, "description": "..."}]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			ui := NewUI(outputJSON, noColor)

			var products []assist.Product
			if productFile != "" {
				data, err := os.ReadFile(productFile)
				if err != nil {
					return fmt.Errorf("read product file: %w", err)
				}
				if err := json.Unmarshal(data, &products); err != nil {
					return fmt.Errorf("parse product file: %w", err)
				}
			}

			resolver, _, err := buildResolver()
			if err != nil {
				return fmt.Errorf("wire resolver: %w", err)
			}

			stop := ui.Spinner("Resolving...")
			start := time.Now()
			resp := resolver.Resolve(ctx, &assist.Request{
				UserMessage: message,
				SessionID:   sessionID,
				Products:    products,
				Context: assist.RequestContext{
					ShopDomain: shop,
					Locale:     locale,
				},
			})
			stop()

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(resp)
			}

			ui.Section("Response")
			ui.KeyValue("Message", resp.Message)
			ui.KeyValue("Type", string(resp.MessageType))
			ui.KeyValue("Confidence", fmt.Sprintf("%.2f", resp.Confidence))
			ui.KeyValue("Sentiment", string(resp.Sentiment))
			ui.KeyValue("Latency", FormatDuration(time.Since(start)))

			if len(resp.Recommendations) > 0 {
				ui.Section("Recommendations")
				rows := make([][]string, 0, len(resp.Recommendations))
				for _, rec := range resp.Recommendations {
					rows = append(rows, []string{
						rec.ID,
						rec.Title,
						fmt.Sprintf("%.2f", rec.Price),
						fmt.Sprintf("%d", rec.RelevanceScore),
					})
				}
				ui.Table([]string{"ID", "Title", "Price", "Score"}, rows)
			}

			if len(resp.QuickReplies) > 0 {
				ui.KeyValue("Quick replies", strings.Join(resp.QuickReplies, " | "))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "shopper message (required)")
	cmd.Flags().StringVarP(&shop, "shop", "s", "demo.myshopify.com", "shop domain")
	cmd.Flags().StringVarP(&locale, "locale", "l", "", "locale hint, e.g. fr or fr-CA")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id for personalization")
	cmd.Flags().StringVarP(&productFile, "products", "p", "", "JSON file with the product catalog")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

// newDetectCmd creates the detect subcommand.
func newDetectCmd() *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "detect [message]",
		Short: "Detect the language of a shopper message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detector := language.NewDetector()
			lang := detector.Detect(args[0], locale)

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]string{"language": string(lang)})
			}

			ui := NewUI(outputJSON, noColor)
			ui.KeyValue("Language", string(lang))
			return nil
		},
	}

	cmd.Flags().StringVarP(&locale, "locale", "l", "", "locale hint that overrides detection")
	return cmd
}

// newPolicyCmd creates the policy subcommand with get and invalidate.
func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Manage shop policy caches",
	}

	getCmd := &cobra.Command{
		Use:   "get [shop-domain]",
		Short: "Fetch a shop's policies through the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			ui := NewUI(outputJSON, noColor)

			store := cache.NewMemoryClient(cfg.Cache.MaxEntries)
			policyCache := policy.NewCache(logger, store, policy.NewHTTPFetcher(policy.FetcherConfig{
				EndpointTemplate: cfg.Policy.EndpointTemplate,
				Timeout:          cfg.Policy.FetchTimeout,
			}), policy.CacheConfig{
				TTL:          cfg.Policy.TTL,
				FetchTimeout: cfg.Policy.FetchTimeout,
			})

			stop := ui.Spinner("Fetching policies...")
			policies, err := policyCache.Get(ctx, args[0])
			stop()
			if err != nil {
				return fmt.Errorf("fetch policies: %w", err)
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(policies)
			}

			ui.Section("Policies")
			ui.KeyValue("Shipping", templates.TruncatePolicy(policies.Shipping, 120))
			ui.KeyValue("Returns", templates.TruncatePolicy(policies.Returns, 120))
			ui.KeyValue("Privacy", templates.TruncatePolicy(policies.Privacy, 120))
			ui.KeyValue("Contact", policies.ContactEmail)
			return nil
		},
	}

	cmd.AddCommand(getCmd)
	return cmd
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("assist-engine-cli v0.3.0")
		},
	}
}
