package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 애플리케이션 설정
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Dart     DartConfig     `toml:"dart"`
	Archive  ArchiveConfig  `toml:"archive"`
	Telegram TelegramConfig `toml:"telegram"`
}

// ServerConfig 상태 조회 서버 설정
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 데이터 경로 설정
type DataConfig struct {
	DataDir      string `toml:"data_dir"`
	WorkbookPath string `toml:"workbook_path"`
}

// DartConfig OpenDART 조회 설정
type DartConfig struct {
	APIKey    string `toml:"api_key"`
	CorpCode  string `toml:"corp_code"`
	StartDate string `toml:"start_date"`
	EndDate   string `toml:"end_date"`
}

// ArchiveConfig 아카이브 시트 설정
type ArchiveConfig struct {
	Sheet       string  `toml:"sheet"`
	StartRow    int     `toml:"start_row"`
	RunDateCell string  `toml:"run_date_cell"`
	UnitDivisor float64 `toml:"unit_divisor"`
}

// TelegramConfig 알림 설정
type TelegramConfig struct {
	BotToken  string `toml:"bot_token"`
	ChannelID string `toml:"channel_id"`
}

// DefaultConfig 기본 설정
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20881,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:      "data",
			WorkbookPath: "data/archive.xlsx",
		},
		Dart: DartConfig{
			CorpCode: "00126380",
		},
		Archive: ArchiveConfig{
			Sheet:       "Dart_Archive",
			StartRow:    10,
			RunDateCell: "J1",
			UnitDivisor: 1,
		},
	}
}

// GetExeDir 실행 파일이 있는 디렉터리
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// Load config.toml을 읽어 설정을 만든다.
// 파일이 없으면 기본값을 쓰고, 비밀 값은 환경 변수가 우선한다.
func Load(path string) (*AppConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("설정 파일 해석 실패 (%s): %w", path, err)
		}
	case os.IsNotExist(err):
		// 설정 파일 없이 환경 변수만으로도 돌 수 있다
	default:
		return nil, err
	}

	applyEnv(config)
	return config, nil
}

// LoadDefault 실행 파일 옆의 config.toml을 읽는다
func LoadDefault() (*AppConfig, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return Load(filepath.Join(exeDir, "config.toml"))
}

func applyEnv(config *AppConfig) {
	if v := os.Getenv("DART_API_KEY"); v != "" {
		config.Dart.APIKey = v
	}
	if v := os.Getenv("MANUAL_START_DATE"); v != "" {
		config.Dart.StartDate = v
	}
	if v := os.Getenv("MANUAL_END_DATE"); v != "" {
		config.Dart.EndDate = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		config.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHANNEL_ID"); v != "" {
		config.Telegram.ChannelID = v
	}
}

// Validate 갱신 작업에 필요한 값이 채워졌는지 확인한다
func (c *AppConfig) Validate() error {
	if c.Dart.APIKey == "" {
		return fmt.Errorf("DART API 키가 없음 (config.toml dart.api_key 또는 DART_API_KEY)")
	}
	if c.Dart.CorpCode == "" {
		return fmt.Errorf("대상 기업 코드가 없음")
	}
	if c.Data.WorkbookPath == "" {
		return fmt.Errorf("아카이브 통합문서 경로가 없음")
	}
	return nil
}

// EnsureDataDir 데이터 디렉터리를 만들어 경로를 돌려준다
func EnsureDataDir(config *AppConfig) (string, error) {
	if err := os.MkdirAll(config.Data.DataDir, 0755); err != nil {
		return "", err
	}
	return config.Data.DataDir, nil
}
