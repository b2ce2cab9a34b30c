package seed

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/auth"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
)

// Run cria o admin e um psicólogo de demonstração. Idempotente: se já há
// usuários, não faz nada.
func Run(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&repo.Usuario{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	adminHash, err := auth.HashPassword("123456")
	if err != nil {
		return err
	}
	if _, err := repo.CreateUsuario(ctx, db, "Administrador", "admin@mindcarepro.com", adminHash, auth.TipoAdmin); err != nil {
		return err
	}
	log.Printf("[seed] usuário admin criado: admin@mindcarepro.com")

	psiHash, err := auth.HashPassword("ChangeMe123!")
	if err != nil {
		return err
	}
	if _, err := repo.CreateUsuario(ctx, db, "Dra. Ana Souza", "ana@mindcarepro.com", psiHash, auth.TipoPsicologo); err != nil {
		return err
	}
	log.Printf("[seed] psicóloga de demonstração criada: ana@mindcarepro.com")
	return nil
}
