package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vshaniya/library-manager/config"
	"github.com/vshaniya/library-manager/internal/handler"
	"github.com/vshaniya/library-manager/internal/repository"
	"github.com/vshaniya/library-manager/internal/server"
	"github.com/vshaniya/library-manager/internal/service"
	"github.com/vshaniya/library-manager/migrations"
	"github.com/vshaniya/library-manager/pkg/kafka"
	"github.com/vshaniya/library-manager/pkg/logger"
	"github.com/vshaniya/library-manager/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	opts := []service.Option{}
	var producer sarama.AsyncProducer
	if len(cfg.Kafka.Addrs) > 0 {
		producer, err = kafka.NewAsyncProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewAsyncProducer", zap.Error(err))
		}
		opts = append(opts, service.WithEventLog(service.NewLoanLog(producer, cfg.Kafka.Topic)))
	}
	svc := service.NewService(repo, log, opts...)

	h := handler.New(svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
		return nil
	})
	if producer != nil {
		g.Go(func() error {
			for err := range producer.Errors() {
				log.Warn("loan event delivery", zap.Error(err))
			}
			return nil
		})
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("producer.Close", zap.Error(err))
		}
	}
	db.Close()
	_ = g.Wait() //nolint:errcheck
	log.Info("Graceful shutdown finished")
}
