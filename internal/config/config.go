package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port       string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password   string        `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB         int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"REDIS_SESSION_TTL" env-default:"1h"`
}

// Game holds the defaults applied to every new session.
type Game struct {
	PlayerSide string `yaml:"player-side" env:"GAME_PLAYER_SIDE" env-default:"X"`
	Difficulty string `yaml:"difficulty" env:"GAME_DIFFICULTY" env-default:"hard"`
	PlayerName string `yaml:"player-name" env:"GAME_PLAYER_NAME" env-default:"Player"`
	AIName     string `yaml:"ai-name" env:"GAME_AI_NAME" env-default:"AI"`
	AutoAITurn bool   `yaml:"auto-ai-turn" env:"GAME_AUTO_AI_TURN" env-default:"true"`
	// AISeed fixes the random stream of the easy and medium AI. Zero seeds from the clock.
	AISeed int64 `yaml:"ai-seed" env:"GAME_AI_SEED" env-default:"0"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.Game.Validate(); err != nil {
		panic(fmt.Errorf("invalid game config: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// Validate - checks that the configured side and difficulty are known.
func (that *Game) Validate() error {
	if _, err := entity.ParseSide(that.PlayerSide); err != nil {
		return err
	}

	if _, err := entity.ParseDifficulty(that.Difficulty); err != nil {
		return err
	}

	return nil
}

func (that *Game) Side() entity.Side {
	side, _ := entity.ParseSide(that.PlayerSide)
	return side
}

func (that *Game) Level() entity.Difficulty {
	difficulty, _ := entity.ParseDifficulty(that.Difficulty)
	return difficulty
}
