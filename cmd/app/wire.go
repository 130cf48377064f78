//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/label-insight/internal/bootstrap"
	"github.com/yanqian/label-insight/internal/domain/analysis"
	"github.com/yanqian/label-insight/internal/domain/auth"
	"github.com/yanqian/label-insight/internal/domain/history"
	"github.com/yanqian/label-insight/internal/domain/profile"
	"github.com/yanqian/label-insight/internal/infra/config"
	"github.com/yanqian/label-insight/internal/infra/ocr/tesseract"
	"github.com/yanqian/label-insight/internal/infra/uploads"
	"github.com/yanqian/label-insight/internal/infra/vision"
	httpiface "github.com/yanqian/label-insight/internal/interface/http"
	"github.com/yanqian/label-insight/pkg/logger"
	"github.com/yanqian/label-insight/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewRecorder,
		provideAuthConfig,
		provideHistoryConfig,
		provideRepositories,
		provideUserRepository,
		provideProfileRepository,
		provideHistoryStore,
		provideAnalysisClient,
		provideTokenCounter,
		providePreprocessor,
		provideExtractor,
		provideUploads,
		provideHealthInfo,
		wire.Bind(new(analysis.Preprocessor), new(*vision.Preprocessor)),
		wire.Bind(new(analysis.TextExtractor), new(*tesseract.Extractor)),
		wire.Bind(new(analysis.Observer), new(*metrics.Recorder)),
		wire.Bind(new(httpiface.Uploader), new(*uploads.LocalStore)),
		analysis.NewService,
		auth.NewService,
		profile.NewService,
		history.NewService,
		wire.Struct(new(httpiface.Services), "*"),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
