package service

import (
	"github.com/bitfantasy/nimo-oms/internal/config"
	"github.com/bitfantasy/nimo-oms/internal/erp/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Auth      *AuthService
	Order     *OrderService
	Inventory *InventoryService
	Product   *ProductService
	Supplier  *SupplierService
	Warehouse *WarehouseService
	Currency  *CurrencyService
	Report    *ReportService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	// 初始化MinIO客户端
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("MinIO初始化失败，报表归档不可用", zap.Error(err))
			minioClient = nil
		}
	}

	inventorySvc := NewInventoryService(repos.Inventory, logger)

	return &Services{
		Auth:      NewAuthService(repos.User, cfg.JWT),
		Order:     NewOrderService(repos.Order, repos.Product, repos.Supplier, repos.Warehouse, inventorySvc),
		Inventory: inventorySvc,
		Product:   NewProductService(repos.Product),
		Supplier:  NewSupplierService(repos.Supplier),
		Warehouse: NewWarehouseService(repos.Warehouse),
		Currency:  NewCurrencyService(repos.Currency, rdb),
		Report:    NewReportService(repos.Order, repos.Warehouse, minioClient, cfg.MinIO.Bucket, logger),
	}
}
