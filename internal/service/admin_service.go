package service

import (
    "context"
    "fmt"

    "go.uber.org/zap"

    "github.com/iliyamo/movie-ticketing/internal/model"
    "github.com/iliyamo/movie-ticketing/internal/repository"
)

// AdminService grants and revokes the administrator capability.
type AdminService struct {
    users *repository.UserRepo
    log   *zap.Logger
}

func NewAdminService(users *repository.UserRepo, log *zap.Logger) *AdminService {
    if log == nil {
        log = zap.NewNop()
    }
    return &AdminService{users: users, log: log.Named("admin")}
}

// Promote makes the user an administrator.
func (s *AdminService) Promote(ctx context.Context, userID uint64, caller model.Caller) (model.User, error) {
    if err := requireAdmin(caller); err != nil {
        return model.User{}, err
    }
    return s.setAdmin(ctx, userID, caller, true)
}

// Demote removes the administrator capability.  Administrators cannot
// demote themselves.
func (s *AdminService) Demote(ctx context.Context, userID uint64, caller model.Caller) (model.User, error) {
    if err := requireAdmin(caller); err != nil {
        return model.User{}, err
    }
    if caller.ID == userID {
        return model.User{}, validationf("administrators cannot demote themselves")
    }
    return s.setAdmin(ctx, userID, caller, false)
}

func (s *AdminService) setAdmin(ctx context.Context, userID uint64, caller model.Caller, admin bool) (model.User, error) {
    if err := s.users.SetAdmin(ctx, userID, admin); err != nil {
        return model.User{}, notFound(err, "user", userID)
    }
    u, err := s.users.GetByID(ctx, userID)
    if err != nil {
        return model.User{}, notFound(err, "user", userID)
    }
    s.log.Info("administrator flag changed", zap.Uint64("user_id", userID), zap.Bool("is_admin", admin), zap.Uint64("by_user_id", caller.ID))
    return u, nil
}

func requireAdmin(caller model.Caller) error {
    if !caller.IsAdmin {
        return fmt.Errorf("%w: administrator capability required", ErrForbidden)
    }
    return nil
}
