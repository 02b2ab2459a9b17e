package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/ivistaz-ecom/Aarna-law-2026/internal/logger"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/service/zoho"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the lead gateway will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key for signing form tokens
	// Leave empty to disable form token protection
	SecretKey string

	// Environment
	Environment string

	// Zoho OAuth client registration
	// The three credentials are checked on first token use, not at startup
	ZohoRefreshToken string
	ZohoClientID     string
	ZohoClientSecret string

	// Zoho endpoints and the CRM module leads are filed under
	ZohoAccountsURL string
	ZohoCRMURL      string
	ZohoModule      string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:        defaultLoggingLevel,
		ListenAddr:      defaultListenAddr,
		Environment:     defaultEnvironment,
		ZohoAccountsURL: zoho.DefaultAccountsURL,
		ZohoCRMURL:      zoho.DefaultCRMURL,
		ZohoModule:      zoho.DefaultModule,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":        setString(&c.ListenAddr),
		"DATABASE_URI":       setString(&c.DatabaseDSN),
		"SECRET_KEY":         setString(&c.SecretKey),
		"LOG_LEVEL":          setString(&c.LogLevel),
		"ENVIRONMENT":        setString(&c.Environment),
		"ZOHO_REFRESH_TOKEN": setString(&c.ZohoRefreshToken),
		"ZOHO_CLIENT_ID":     setString(&c.ZohoClientID),
		"ZOHO_CLIENT_SECRET": setString(&c.ZohoClientSecret),
		"ZOHO_ACCOUNTS_URL":  setString(&c.ZohoAccountsURL),
		"ZOHO_CRM_URL":       setString(&c.ZohoCRMURL),
		"ZOHO_MODULE":        setString(&c.ZohoModule),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("leadgate", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key for form tokens (empty disables them)")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	fs.StringVar(&c.ZohoRefreshToken, "zoho-refresh-token", c.ZohoRefreshToken, "Zoho OAuth refresh token")
	fs.StringVar(&c.ZohoClientID, "zoho-client-id", c.ZohoClientID, "Zoho OAuth client id")
	fs.StringVar(&c.ZohoClientSecret, "zoho-client-secret", c.ZohoClientSecret, "Zoho OAuth client secret")
	fs.StringVar(&c.ZohoAccountsURL, "zoho-accounts-url", c.ZohoAccountsURL, "Zoho accounts base URL")
	fs.StringVar(&c.ZohoCRMURL, "zoho-crm-url", c.ZohoCRMURL, "Zoho CRM API base URL")
	fs.StringVar(&c.ZohoModule, "zoho-module", c.ZohoModule, "Zoho CRM module for leads")

	return fs.Parse(args)
}
