package main

import (
	"flag"
	"log"

	"github.com/amankumarsingh77/video-ingest/internal/config"
	"github.com/amankumarsingh77/video-ingest/internal/server"
	"github.com/amankumarsingh77/video-ingest/pkg/db/aws"
	"github.com/amankumarsingh77/video-ingest/pkg/db/postgres"
	"github.com/amankumarsingh77/video-ingest/pkg/db/redis"
	"github.com/amankumarsingh77/video-ingest/pkg/logger"
)

func main() {
	log.Println("Starting server")
	configFile := flag.String("config", "config.yml", "path to the config file")
	flag.Parse()

	cfgFile, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}
	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to db: %s", err)
	}
	appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
	defer psqlDB.Close()

	redisClient, err := redis.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	appLogger.Infof("redis connected")
	defer redisClient.Close()

	s3Client, err := aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		appLogger.Fatalf("could not create s3 client: %s", err)
	}

	s := server.NewServer(cfg, psqlDB, redisClient, s3Client, appLogger)
	if err = s.Run(); err != nil {
		appLogger.Errorf("server stopped with error: %s", err)
	}
}
