package api

import (
	"sync"
	"time"

	"github.com/mr-atuzie/angt-votify-BE/logging"
	"github.com/spf13/viper"
)

type Config struct {
	StorageConfig
	ServerConfig
	AuthConfig
	NotifyConfig
}

type StorageConfig struct {
	TableNameUsers         string
	TableNameElections     string
	TableNameBallots       string
	TableNameVotingOptions string
	TableNameVoters        string
	TableNameVoterGuards   string
	TableNameVotes         string
	Timeout                time.Duration
}

type ServerConfig struct {
	Port int
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type NotifyConfig struct {
	SenderEmail string
	Timeout     time.Duration
}

var settingsOnce sync.Once

func ReadConfig() *Config {

	var conf = &Config{
		StorageConfig: StorageConfig{
			TableNameUsers:         viper.GetString("storage.TableNameUsers"),
			TableNameElections:     viper.GetString("storage.TableNameElections"),
			TableNameBallots:       viper.GetString("storage.TableNameBallots"),
			TableNameVotingOptions: viper.GetString("storage.TableNameVotingOptions"),
			TableNameVoters:        viper.GetString("storage.TableNameVoters"),
			TableNameVoterGuards:   viper.GetString("storage.TableNameVoterGuards"),
			TableNameVotes:         viper.GetString("storage.TableNameVotes"),
			Timeout:                time.Duration(getIntOrDefault("storage.TimeoutSeconds", 10)) * time.Second,
		},
		ServerConfig: ServerConfig{
			Port: viper.GetInt("server.port"),
		},
		AuthConfig: AuthConfig{
			JWTSecret: getString("auth.JWTSecret"),
			TokenTTL:  time.Duration(getIntOrDefault("auth.TokenTTLMinutes", 60)) * time.Minute,
		},
		NotifyConfig: NotifyConfig{
			SenderEmail: getStringOrDefault("notify.SenderEmail", "no-reply@votify.app"),
			Timeout:     time.Duration(getIntOrDefault("notify.TimeoutSeconds", 10)) * time.Second,
		},
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}

func getString(name string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Fatalf("required environment variable '%s' is missing", name)
	return ""
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getStringOrDefault(name string, def string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
