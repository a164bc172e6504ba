// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	prefix      = "tempmail"
	tableFormat = `InstantTempMail is configured via the environment. The following environment
variables can be used:

KEY	DEFAULT	REQUIRED	DESCRIPTION
{{range .}}{{usage_key .}}	{{usage_default .}}	{{usage_required .}}	{{usage_description .}}
{{end}}`
)

var (
	// Version of this build, set by main
	Version = ""

	// BuildDate for this build, set by main
	BuildDate = ""
)

// Root wraps all other configurations.
type Root struct {
	LogLevel  string `required:"true" default:"info" desc:"debug, info, warn, or error"`
	Web       Web
	Inbox     Inbox
	Assistant Assistant
}

// Web contains the HTTP server configuration.
type Web struct {
	Addr     string `required:"true" default:"0.0.0.0:9000" desc:"Web server TCP4 host:port"`
	BasePath string `default:"" desc:"Base path prefix for API URLs"`
}

// Inbox contains the temporary inbox configuration.
type Inbox struct {
	Domain        string        `required:"true" default:"tempmail.dev" desc:"Domain of generated addresses"`
	DefaultTTL    time.Duration `required:"true" default:"1h" desc:"Initial TTL: 10m, 1h, 6h or 24h"`
	MsgCap        int           `required:"true" default:"500" desc:"Maximum messages per inbox"`
	WelcomeDelay  time.Duration `required:"true" default:"5s" desc:"Delay before welcome message, 0 disables"`
	SweepInterval time.Duration `required:"true" default:"1m" desc:"Expired message sweep interval, 0 disables"`
}

// Assistant contains the canned assistant configuration.
type Assistant struct {
	Locale       string        `required:"true" default:"hi" desc:"Reply language: hi or en"`
	AnalyzeDelay time.Duration `required:"true" default:"1s" desc:"Simulated latency of analyze"`
	SuggestDelay time.Duration `required:"true" default:"800ms" desc:"Simulated latency of suggestions"`
	ChatDelay    time.Duration `required:"true" default:"1s" desc:"Simulated latency of chat"`
}

// Process loads and parses configuration from the environment.
func Process() (*Root, error) {
	c := &Root{}
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, err
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.Inbox.Domain = strings.ToLower(c.Inbox.Domain)
	if c.Inbox.MsgCap < 0 {
		return nil, fmt.Errorf("inbox message cap %v must not be negative", c.Inbox.MsgCap)
	}
	return c, nil
}

// LoadEnvFile copies variables from a dotenv formatted file into the environment. Variables
// already present in the environment are left alone.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// Usage prints out the envconfig usage to Stderr.
func Usage() {
	tabs := tabwriter.NewWriter(os.Stderr, 1, 0, 4, ' ', 0)
	if err := envconfig.Usagef(prefix, &Root{}, tabs, tableFormat); err != nil {
		log.Fatalf("Unable to parse env config: %v", err)
	}
	tabs.Flush()
}
