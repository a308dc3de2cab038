package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Environment: EnvironmentConfig{
			Workspace: "/opt/mlenv",
		},
		Steps: []Step{
			{
				Name:     "archive-tools",
				Kind:     StepOSPackage,
				Packages: []string{"unzip", "build-essential"},
			},
			{
				Name:     "scientific-stack",
				Kind:     StepPythonPackage,
				Packages: []string{"numpy==1.14.0", "scipy==1.0.0", "h5py==2.7.1", "nltk==3.2.5"},
			},
			{
				Name:    "theano",
				Kind:    StepGitCheckout,
				URL:     "https://github.com/Theano/Theano.git",
				Rev:     "0000000000000000000000000000000000000000",
				Install: "pip install -e .",
			},
			{
				Name:     "blocks",
				Kind:     StepGitCheckout,
				URL:      "https://github.com/mila-iqia/blocks.git",
				Rev:      "0000000000000000000000000000000000000000",
				Install:  "pip install -e .",
				Requires: []string{"theano"},
			},
			{
				Name:     "nltk-corpora",
				Kind:     StepCommand,
				Run:      "python -m nltk.downloader punkt stopwords",
				Requires: []string{"scientific-stack"},
			},
			{
				Name:     "corenlp",
				Kind:     StepResource,
				URL:      "https://nlp.stanford.edu/software/stanford-corenlp-full-2017-06-09.zip",
				Dest:     "corenlp",
				Unpack:   "zip",
				Requires: []string{"archive-tools"},
			},
		},
		Launcher: LauncherConfig{
			Entrypoint: []string{"python", "train_extractive_qa.py"},
			JobIDEnv:   "JOB_ID",
			EnvFiles:   []string{"cloud_env.sh"},
			LogDir:     ".",
			Trace:      true,
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
