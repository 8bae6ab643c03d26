package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env          string // DEV (local; default), TEST, QA, PROD
	Build        string
	Debug        bool
	TestMode     bool
	AppName      string
	SecretKey    string
	RollbarToken string

	Server struct {
		Host            string
		Address         string
		DebugHost       string
		ShutdownTimeout time.Duration
		AllowedOrigins  []string
	}

	Database struct {
		Engine        string // postgres, sqlite3 or inmem
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	Menu struct {
		CacheDriver  string // memory, redis or none
		CacheTTL     time.Duration
		CachePrefix  string
		BuildTimeout time.Duration
	}

	Redis struct {
		Address  string
		Password string
		DB       int
	}

	Realtime struct {
		Driver string // none or redis
	}
}

// DatabaseAddress returns the postgres "host:port". sqlite3 uses Database.Name as the file path instead.
func (c *Config) DatabaseAddress() string {
	return net.JoinHostPort(c.Database.Host, c.Database.Port)
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("appName", "Masomo Market")
	conf.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.allowedOrigins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "masomo_market")
	conf.SetDefault("database.user", "masomo")
	conf.SetDefault("database.password", "masomo")
	conf.SetDefault("database.adminUser", "postgres")
	conf.SetDefault("database.adminPassword", "postgres")
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("menu.cacheDriver", "memory")
	conf.SetDefault("menu.cacheTTL", 300*time.Second)
	conf.SetDefault("menu.cachePrefix", "sidebar_menu")
	conf.SetDefault("menu.buildTimeout", 5*time.Second)

	conf.SetDefault("redis.address", "localhost:6379")
	conf.SetDefault("redis.password", "")
	conf.SetDefault("redis.db", 0)

	conf.SetDefault("realtime.driver", "none")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	c := &Config{
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
	}

	c.Server.Host = conf.GetString("server.host")
	c.Server.Address = conf.GetString("server.address")
	c.Server.DebugHost = conf.GetString("server.debugHost")
	c.Server.ShutdownTimeout = conf.GetDuration("server.shutdownTimeout")
	c.Server.AllowedOrigins = conf.GetStringSlice("server.allowedOrigins")

	c.Database.Engine = conf.GetString("database.engine")
	c.Database.Host = conf.GetString("database.host")
	c.Database.Port = conf.GetString("database.port")
	c.Database.Name = conf.GetString("database.name")
	c.Database.User = conf.GetString("database.user")
	c.Database.Password = conf.GetString("database.password")
	c.Database.AdminUser = conf.GetString("database.adminUser")
	c.Database.AdminPassword = conf.GetString("database.adminPassword")
	c.Database.DisableTLS = conf.GetBool("database.disableTLS")

	c.Menu.CacheDriver = conf.GetString("menu.cacheDriver")
	c.Menu.CacheTTL = conf.GetDuration("menu.cacheTTL")
	c.Menu.CachePrefix = conf.GetString("menu.cachePrefix")
	c.Menu.BuildTimeout = conf.GetDuration("menu.buildTimeout")

	c.Redis.Address = conf.GetString("redis.address")
	c.Redis.Password = conf.GetString("redis.password")
	c.Redis.DB = conf.GetInt("redis.db")

	c.Realtime.Driver = conf.GetString("realtime.driver")

	return c
}
