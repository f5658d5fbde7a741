package config

import (
	"encoding/json"
	"os"
)

var Config *AppConfig

type AppConfig struct {
	ServerId       int    `json:"server_id"`
	AppVersion     string `json:"app_version"`
	TimezoneOffset int64  `json:"timezone_offset"` //时区偏移 秒
	LogConfig      `json:",inline"`
	GateConfig     `json:",inline"`
	IsDebug        bool `json:"is_debug"`
}

type LogConfig struct {
	LogPath   string `json:"log_path"`
	LogName   string `json:"log_name"`
	LogLevel  int    `json:"log_level"`
	LogStdOut bool   `json:"log_std_out"`
}

type GateConfig struct {
	GateAddr      string `json:"gate_addr"`       //监听地址, 如 tcp://:8080
	GateMulticore bool   `json:"gate_multicore"`  //gnet多核模式
	IdleTimeoutMs int64  `json:"idle_timeout_ms"` //连接空闲超时 毫秒
}

func LoadConfig(configFile string, loadConfigFromEnv func(*AppConfig) error) error {
	Config = &AppConfig{
		LogConfig: LogConfig{
			LogLevel:  4, // info
			LogStdOut: true,
		},
		GateConfig: GateConfig{
			GateAddr:      "tcp://:8080",
			IdleTimeoutMs: 30 * 1000,
		},
	}
	if len(configFile) == 0 {
		if loadConfigFromEnv != nil {
			return loadConfigFromEnv(Config)
		}
		return nil
	}
	if err := loadConfigFromFile(configFile); err != nil {
		return err
	}
	if loadConfigFromEnv != nil {
		return loadConfigFromEnv(Config)
	}
	return nil
}

func loadConfigFromFile(configFile string) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &Config)
}

func (conf *AppConfig) JsonFormat() string {
	if conf == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(conf, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
