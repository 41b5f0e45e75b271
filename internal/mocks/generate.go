package mocks

//go:generate mockgen -destination=./mock_service.go -package=mocks TradePulse/internal/domain/service SentimentClassifier,TickerExtractor
//go:generate mockgen -destination=./mock_repository.go -package=mocks TradePulse/internal/domain/repository MarketStream,VenueListing,SubscriptionRegistry,OrderDispatcher,AuditSink,SnapshotSink,WatchlistStore,FillRecorder
