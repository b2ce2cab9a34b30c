package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func UsuarioByEmail(ctx context.Context, db *gorm.DB, email string) (*Usuario, error) {
	var u Usuario
	err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func UsuarioByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Usuario, error) {
	var u Usuario
	err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func CreateUsuario(ctx context.Context, db *gorm.DB, nome, email, senhaHash, tipo string) (uuid.UUID, error) {
	u := Usuario{
		ID:          uuid.New(),
		Nome:        nome,
		Email:       email,
		SenhaHash:   senhaHash,
		Tipo:        tipo,
		Ativo:       true,
		DataCriacao: time.Now(),
	}
	if err := db.WithContext(ctx).Create(&u).Error; err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}

func UpdateUsuarioPerfil(ctx context.Context, db *gorm.DB, id uuid.UUID, nome, email string) error {
	result := db.WithContext(ctx).Model(&Usuario{}).Where("id = ?", id).
		Updates(map[string]interface{}{"nome": nome, "email": email})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func UpdateUsuarioSenha(ctx context.Context, db *gorm.DB, id uuid.UUID, senhaHash string) error {
	result := db.WithContext(ctx).Model(&Usuario{}).Where("id = ?", id).
		Update("senha_hash", senhaHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeactivateUsuario revoga o login sem apagar o registro.
func DeactivateUsuario(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	result := db.WithContext(ctx).Model(&Usuario{}).Where("id = ?", id).
		Update("ativo", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
