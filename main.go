// @title Votify API
// @version 1.0
// @description Backend API for managing elections, ballots, voters and votes

// @securityDefinitions.apikey BearerToken
// @in header
// @name Authorization
package main

import (
	"github.com/mr-atuzie/angt-votify-BE/api"
	"github.com/mr-atuzie/angt-votify-BE/logging"
	"github.com/spf13/viper"
)

func main() {
	logging.BootstrapLogger()

	// Load env
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Errorf("Failed to read config file: %v", err)
		panic("Failed to read config file: " + err.Error())
	}

	// Read config
	config := api.ReadConfig()

	// Start the service (inside the lambda)
	service := api.NewServer(config)
	service.Start()
}
