package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Auth modes
const (
	AuthModeDirect = "direct" // secret is the student ID
	AuthModeCode   = "code"   // secret is a one-time code sent by email
)

// Store backends
const (
	StoreCSV      = "csv"
	StoreSheets   = "sheets"
	StorePostgres = "postgres"
)

type Config struct {
	Env      string
	Build    string
	Debug    bool
	TestMode bool
	WorkDir  string

	AppName          string
	SecretKey        string
	DefaultFromEmail mail.Address
	SendgridApiKey   string
	RollbarToken     string

	Server struct {
		Address            string
		Host               string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
	}

	Roster struct {
		Path string
	}

	Store struct {
		Backend          string
		CSVPath          string
		SheetID          string
		SheetName        string
		SheetCredentials string
	}

	Database struct {
		Engine     string
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	Auth struct {
		Mode           string
		CodeValidity   time.Duration
		CodeCooldown   time.Duration
		SessionTimeout time.Duration
	}

	Admin struct {
		PasswordHash string
	}

	Evaluation struct {
		EnforceSignatureMatch bool
	}
}

func (c *Config) DatabaseAddress() string {
	return c.Database.Host + ":" + c.Database.Port
}

func newViper() *viper.Viper {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Peer Evaluation")
	v.SetDefault("secretKey", "k2d9-x#q)vb!7u=gm$0p&t@c(3w8z^e5rj*na+yf1s%o6hl4")
	v.SetDefault("defaultFromEmail", "Peer Evaluation <noreply@localhost>")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.jwtExpirationDelta", 4*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("roster.path", "students.csv")

	v.SetDefault("store.backend", StoreCSV)
	v.SetDefault("store.csvPath", "evaluations.csv")
	v.SetDefault("store.sheetID", "")
	v.SetDefault("store.sheetName", "Sheet1")
	v.SetDefault("store.sheetCredentials", "")

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "peereval")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("auth.mode", AuthModeDirect)
	v.SetDefault("auth.codeValidity", time.Hour)
	v.SetDefault("auth.codeCooldown", time.Minute)
	v.SetDefault("auth.sessionTimeout", 12*time.Hour)

	v.SetDefault("admin.passwordHash", "")
	v.SetDefault("evaluation.enforceSignatureMatch", false)

	return v
}

// NewConfig reads the configuration of the current ENV (DEV by default) from the environment,
// after loading `config/.env.<env>` if it exists.
// Nested keys are read from env vars with dots replaced by underscores, eg: DEV_AUTH_MODE.
func NewConfig() *Config {
	v := newViper()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := fromViper(v)
	conf.Env = env
	conf.WorkDir = wd
	return conf
}

func fromViper(v *viper.Viper) *Config {
	conf := new(Config)
	conf.Build = v.GetString("build")
	conf.Debug = v.GetBool("debug")
	conf.TestMode = v.GetBool("testMode")

	conf.AppName = v.GetString("appName")
	conf.SecretKey = v.GetString("secretKey")
	conf.SendgridApiKey = v.GetString("sendgridApiKey")
	conf.RollbarToken = v.GetString("rollbarToken")
	if addr, err := mail.ParseAddress(v.GetString("defaultFromEmail")); err == nil {
		conf.DefaultFromEmail = *addr
	} else {
		conf.DefaultFromEmail = mail.Address{Name: conf.AppName, Address: "noreply@localhost"}
	}

	conf.Server.Address = v.GetString("server.address")
	conf.Server.Host = v.GetString("server.host")
	conf.Server.JWTExpirationDelta = v.GetDuration("server.jwtExpirationDelta")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")

	conf.Roster.Path = v.GetString("roster.path")

	conf.Store.Backend = strings.ToLower(v.GetString("store.backend"))
	conf.Store.CSVPath = v.GetString("store.csvPath")
	conf.Store.SheetID = v.GetString("store.sheetID")
	conf.Store.SheetName = v.GetString("store.sheetName")
	conf.Store.SheetCredentials = v.GetString("store.sheetCredentials")

	conf.Database.Engine = v.GetString("database.engine")
	conf.Database.Host = v.GetString("database.host")
	conf.Database.Port = v.GetString("database.port")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.User = v.GetString("database.user")
	conf.Database.Password = v.GetString("database.password")
	conf.Database.DisableTLS = v.GetBool("database.disableTLS")

	conf.Auth.Mode = strings.ToLower(v.GetString("auth.mode"))
	conf.Auth.CodeValidity = v.GetDuration("auth.codeValidity")
	conf.Auth.CodeCooldown = v.GetDuration("auth.codeCooldown")
	conf.Auth.SessionTimeout = v.GetDuration("auth.sessionTimeout")

	conf.Admin.PasswordHash = v.GetString("admin.passwordHash")
	conf.Evaluation.EnforceSignatureMatch = v.GetBool("evaluation.enforceSignatureMatch")
	return conf
}

// NewTestConfig returns the default configuration in test mode, without reading the environment.
func NewTestConfig() *Config {
	conf := fromViper(newViper())
	conf.Env = "TEST"
	conf.TestMode = true
	return conf
}
