package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"shop-backend/internal/auth"
	"shop-backend/internal/models"
	"shop-backend/internal/repositories"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// StoreService handles tenant signup, login and account settings.
type StoreService struct {
	repo    *repositories.StoreRepository
	jwt     *auth.JWTManager
	storage *StorageService
}

func NewStoreService(repo *repositories.StoreRepository, jwt *auth.JWTManager, storage *StorageService) *StoreService {
	return &StoreService{repo: repo, jwt: jwt, storage: storage}
}

func (s *StoreService) Register(ctx context.Context, req *models.RegisterStoreRequest) (*models.LoginResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("store name and email are required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	store := &models.Store{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	token, err := s.jwt.GenerateToken(store)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &models.LoginResponse{Token: token, Store: store}, nil
}

func (s *StoreService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	store, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load store: %w", err)
	}
	if !auth.CheckPassword(store.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(store)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &models.LoginResponse{Token: token, Store: store}, nil
}

func (s *StoreService) Get(ctx context.Context, storeID int) (*models.Store, error) {
	store, err := s.repo.Get(ctx, storeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("store %d not found", storeID)
		}
		return nil, err
	}
	return store, nil
}

// UploadLogo stores the image in object storage and saves the resulting URL.
func (s *StoreService) UploadLogo(ctx context.Context, storeID int, upload *LogoUpload) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("object storage is not configured")
	}

	url, err := s.storage.UploadLogo(ctx, storeID, upload)
	if err != nil {
		return "", fmt.Errorf("upload logo: %w", err)
	}
	if err := s.repo.UpdateLogoURL(ctx, storeID, url); err != nil {
		return "", fmt.Errorf("save logo url: %w", err)
	}
	return url, nil
}
