package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"dartarchive/internal/archive"
	"dartarchive/internal/config"
	"dartarchive/internal/dart"
	"dartarchive/internal/notify"
	"dartarchive/internal/server"
	"dartarchive/internal/sheets"
	"dartarchive/internal/store"
	"dartarchive/internal/updater"
)

var (
	configPath = flag.String("config", "", "설정 파일 경로 (기본: 실행 파일 옆 config.toml)")
	serve      = flag.Bool("serve", false, "갱신 후 상태 조회 서버 유지")
	devMode    = flag.Bool("dev", false, "개발 모드")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  DART Archive - 공시 아카이브 갱신 도구")
	fmt.Println("==========================================")

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("설정 로드 실패: %v", err)
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("설정 검증 실패: %v", err)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Fatalf("데이터 디렉터리 생성 실패: %v", err)
	}
	fmt.Printf("데이터 디렉터리: %s\n", dataDir)

	st, err := store.New(filepath.Join(dataDir, "dartarchive.db"))
	if err != nil {
		log.Fatalf("저장소 초기화 실패: %v", err)
	}
	defer st.Close()

	workbook, err := sheets.OpenWorkbook(cfg.Data.WorkbookPath)
	if err != nil {
		log.Fatalf("아카이브 통합문서 열기 실패 (%s): %v", cfg.Data.WorkbookPath, err)
	}
	defer workbook.Close()

	provider := sheets.NewRetry(workbook, sheets.DefaultRetryConfig())
	api := dart.New(cfg.Dart.APIKey)
	notifier := notify.New(cfg.Telegram.BotToken, cfg.Telegram.ChannelID)

	u := updater.New(provider, api, st, notifier, updater.Config{
		CorpCode:  cfg.Dart.CorpCode,
		StartDate: cfg.Dart.StartDate,
		EndDate:   cfg.Dart.EndDate,
		Archive: archive.WriterConfig{
			Sheet:       cfg.Archive.Sheet,
			StartRow:    cfg.Archive.StartRow,
			RunDateCell: cfg.Archive.RunDateCell,
		},
		UnitDivisor: cfg.Archive.UnitDivisor,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := u.Run(ctx, time.Now())
	if err != nil {
		log.Fatalf("갱신 실패: %v", err)
	}
	if err := workbook.Save(); err != nil {
		log.Fatalf("통합문서 저장 실패: %v", err)
	}

	fmt.Printf("갱신 완료: 분기 %s, 열 %s, 기록 %d건 (건너뜀 %d건), 신규 공시 %d건\n",
		result.Quarter, result.Column, result.Resolved, result.Skipped, result.NewReports)

	if !*serve {
		return
	}

	srv := server.New(st, cfg.Server.DevMode)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		fmt.Printf("상태 조회 서버 시작, 포트 %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("서버 시작 실패: %v", err)
		}
	}()

	fmt.Println("\nCtrl+C로 종료...")
	<-ctx.Done()
	slog.Info("종료 신호 수신")
}

func loadConfig() (*config.AppConfig, error) {
	if *configPath != "" {
		return config.Load(*configPath)
	}
	return config.LoadDefault()
}
