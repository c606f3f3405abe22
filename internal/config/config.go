package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/tlannick/starlane/internal/game"
)

// Load reads configuration from a JSON file and sets default values.
// configDir is the directory containing the config file; a missing file is
// not an error, the defaults simply apply.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("store.path", "./starlane.db")

	viper.SetDefault("rules.battleEngine", game.BattleEngineStandard)
	viper.SetDefault("rules.boardWidth", 10)
	viper.SetDefault("rules.boardHeight", 10)
	viper.SetDefault("rules.standardRoundCap", 16)
	viper.SetDefault("rules.advancedRoundCap", 64)
	viper.SetDefault("rules.advancedScale", 20.0)

	viper.SetDefault("rules.resourcesPerColonist", 10)
	viper.SetDefault("rules.resourcesPerFactory", 1)
	viper.SetDefault("rules.mineOutput", 0.1)
	viper.SetDefault("rules.maxPopulation", 1_000_000)
	viper.SetDefault("rules.growthRate", 0.10)
	viper.SetDefault("rules.researchBaseCost", 50)

	viper.SetConfigName("starlane.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}
	return nil
}

// Rules assembles a ruleset from the loaded configuration, starting from the
// engine defaults so keys absent from the file keep their standard values.
func Rules() game.Rules {
	r := game.DefaultRules()
	r.BattleEngine = viper.GetString("rules.battleEngine")
	r.BoardWidth = viper.GetInt("rules.boardWidth")
	r.BoardHeight = viper.GetInt("rules.boardHeight")
	r.StandardRoundCap = viper.GetInt("rules.standardRoundCap")
	r.AdvancedRoundCap = viper.GetInt("rules.advancedRoundCap")
	r.AdvancedScale = viper.GetFloat64("rules.advancedScale")
	r.ResourcesPerColonist = viper.GetInt("rules.resourcesPerColonist")
	r.ResourcesPerFactory = viper.GetInt("rules.resourcesPerFactory")
	r.MineOutput = viper.GetFloat64("rules.mineOutput")
	r.MaxPopulation = viper.GetInt("rules.maxPopulation")
	r.GrowthRate = viper.GetFloat64("rules.growthRate")
	r.ResearchBaseCost = viper.GetInt("rules.researchBaseCost")
	return r
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
