package config

import (
	"log"
	"os"

	"github.com/go-yaml/yaml"
	"github.com/helpcomp/statement-categorizer/categorize"
)

type openAI struct {
	APIKey string `yaml:"key"`
	Model  string `yaml:"model"`
}

type appConfig struct {
	Owner           string  `yaml:"owner"`
	MappingsPath    string  `yaml:"mappings_path"`
	DatabaseDSN     string  `yaml:"database_dsn"`
	LearnConfidence float64 `yaml:"learn_confidence"`
}

// MasterConfig is the optional YAML config. SeedMappings are merged ahead of
// the owner's stored mappings on every categorization call, useful for
// site-wide overrides that shouldn't live in a per-user store.
type MasterConfig struct {
	AppConfig    appConfig            `yaml:"config"`
	OpenAI       openAI               `yaml:"openai"`
	SeedMappings []categorize.Mapping `yaml:"seedMappings"`
}

func InitConfig(file string) *MasterConfig {
	init := MasterConfig{}
	init.getConf(file)
	return &init
}

func (c *MasterConfig) getConf(file string) *MasterConfig {
	yamlFile, err := os.ReadFile(file)
	if err != nil {
		log.Printf("yamlFile.Get err   #%v ", err)
	}
	err = yaml.Unmarshal(yamlFile, c)
	if err != nil {
		log.Fatalf("Unmarshal: %v", err)
	}

	return c
}
