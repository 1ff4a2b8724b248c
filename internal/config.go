package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const (
	MemoryStore = "memory"
	BadgerStore = "badger"
)

type Config struct {
	LogLevel          string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	AppID             string        `env:"APP_ID,required=true" validate:"required"`
	Username          string        `env:"USERNAME,required=true" validate:"required,excludesall=0x2C"`
	GroupID           string        `env:"GROUP_ID,default=Everyone" validate:"required"`
	Peers             string        `env:"PEERS"`
	MessageStore      string        `env:"MESSAGE_STORE,default=memory" validate:"oneof=memory badger"`
	TransportTimeout  time.Duration `env:"TRANSPORT_TIMEOUT,default=5s" validate:"gt=0"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=1s" validate:"gt=0"`
	FanoutBufferSize  int           `env:"FANOUT_BUFFER_SIZE,default=256" validate:"min=1"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=30s" validate:"gt=0"`
}

// LoadConfig reads the configuration from the environment and validates it.
func LoadConfig() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// PeerNames splits PEERS, dropping blanks and the configured username.
func (c Config) PeerNames() []string {
	names := lo.Map(strings.Split(c.Peers, ","), func(name string, _ int) string {
		return strings.TrimSpace(name)
	})
	return lo.Uniq(lo.Filter(names, func(name string, _ int) bool {
		return name != "" && name != c.Username
	}))
}
