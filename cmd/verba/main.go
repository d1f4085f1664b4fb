package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/verba-ai/verba/internal/ai"
	"github.com/verba-ai/verba/internal/config"
	"github.com/verba-ai/verba/internal/embedcache"
	"github.com/verba-ai/verba/internal/filestore"
	"github.com/verba-ai/verba/internal/handler"
	"github.com/verba-ai/verba/internal/ingest"
	"github.com/verba-ai/verba/internal/middleware"
	"github.com/verba-ai/verba/internal/rag"
	"github.com/verba-ai/verba/internal/service"
	"github.com/verba-ai/verba/internal/vectorstore"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "verba",
		Short: "verba conversation practice backend",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the verba server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}

	var bookFile string
	var bookTitle string
	importCmd := &cobra.Command{
		Use:   "import-book",
		Short: "ingest a book into the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bookFile == "" || bookTitle == "" {
				return fmt.Errorf("--file and --title are required")
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runImport(cfg, bookFile, bookTitle)
		},
	}
	importCmd.Flags().StringVar(&bookFile, "file", "", "book source file or object key")
	importCmd.Flags().StringVar(&bookTitle, "title", "", "book title stored with every chunk")

	statsCmd := &cobra.Command{
		Use:   "index-stats",
		Short: "print vector index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runStats(cfg)
		},
	}

	rootCmd.AddCommand(runCmd, importCmd, statsCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", path))
	return cfg, nil
}

type components struct {
	manager  *vectorstore.Manager
	rag      *service.RAGService
	chat     *service.ChatService
	analysis *service.AnalysisService
}

func buildComponents(ctx context.Context, cfg *config.Config) (*components, error) {
	manager := vectorstore.NewManager(cfg.DataDir, cfg.AI.EmbedDimension)
	if _, err := manager.InitializeAll(ctx); err != nil {
		return nil, err
	}

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return nil, fmt.Errorf("init ai provider: %w", err)
	}
	embedProvider, err := ai.NewEmbedProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return nil, fmt.Errorf("init embed provider: %w", err)
	}

	docEmbedder := ai.NewEmbedder(embedProvider, cfg.AI.EmbedModel)
	queryEmbedder := embedcache.WrapLRU(
		docEmbedder,
		cfg.RAG.CacheSize,
		time.Duration(cfg.RAG.CacheTTLMinutes)*time.Minute,
	)

	books, err := filestore.New(cfg.BookStore.Type, cfg.BookStore.Data)
	if err != nil {
		return nil, fmt.Errorf("init book store: %w", err)
	}

	ragService := service.NewRAGService(manager, queryEmbedder, docEmbedder, books, ingest.Options{
		ChunkWords:   cfg.RAG.ChunkWords,
		OverlapWords: cfg.RAG.OverlapWords,
	})

	bookIndex, err := ragService.BookIndex()
	if err != nil {
		return nil, err
	}
	retriever := rag.NewRetriever(queryEmbedder, bookIndex, cfg.RAG.Overfetch)
	formatter := rag.NewFormatter(rag.DefaultFilterRules(cfg.RAG.MinChunkChars))
	timeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second

	chatService := service.NewChatService(
		retriever,
		formatter,
		ai.NewChatter(aiProvider, cfg.AI.ChatModel),
		cfg.RAG.TopK,
		timeout,
	)
	analysisService := service.NewAnalysisService(
		ai.NewGenerator(aiProvider, cfg.AI.ChatModel),
		docEmbedder,
		manager,
		retriever,
		cfg.RAG.MaxSources,
		timeout,
	)

	return &components{
		manager:  manager,
		rag:      ragService,
		chat:     chatService,
		analysis: analysisService,
	}, nil
}

func runServer(cfg *config.Config) error {
	ctx := context.Background()
	logutil.GetLogger(ctx).Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("data_dir", cfg.DataDir),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	comps, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer comps.manager.Close()

	deps := handler.RouterDeps{
		RAG:      handler.NewRAGHandler(comps.rag),
		Chat:     handler.NewChatHandler(comps.chat),
		Analysis: handler.NewAnalysisHandler(comps.analysis),
	}
	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

func runImport(cfg *config.Config, file, title string) error {
	ctx := context.Background()
	comps, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer comps.manager.Close()

	fmt.Printf("importing %q from %s\n", title, file)
	report, err := comps.rag.ImportBook(ctx, file, title, func(imported, total int) {
		fmt.Printf("\rimported %d/%d chunks", imported, total)
	})
	if report != nil && report.ChunksExtracted > 0 {
		fmt.Println()
	}
	if err != nil {
		return fmt.Errorf("import %s: %w", file, err)
	}
	fmt.Printf("done: %d chapters detected, %d chunks extracted, %d chunks imported\n",
		report.ChaptersFound, report.ChunksExtracted, report.ChunksImported)
	return printStats(ctx, comps)
}

func runStats(cfg *config.Config) error {
	ctx := context.Background()
	comps, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer comps.manager.Close()
	return printStats(ctx, comps)
}

func printStats(ctx context.Context, comps *components) error {
	stats, err := comps.rag.IndexStats(ctx)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
