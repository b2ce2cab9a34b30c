package reminder

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/whatsapp"
)

// Sender envia um lembrete para um telefone.
type Sender interface {
	SendLembrete(phone, pacienteNome, dataStr, horaStr string) error
}

// Lister abstrai as consultas do disparo para os testes; em produção passe nil
// para usar o repo.
type Lister interface {
	ListConfiguracoesComLembrete(ctx context.Context, db *gorm.DB) ([]repo.Configuracao, error)
	ListSessoesParaLembrete(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, de, ate time.Time) ([]repo.LembreteRow, error)
}

// Disparar percorre os psicólogos com lembrete habilitado e envia um WhatsApp
// por sessão agendada dentro da janela de antecedência de cada um. Falha de
// envio individual é logada e não interrompe o restante.
func Disparar(ctx context.Context, db *gorm.DB, sender Sender) (enviados int, pulados int) {
	return DispararComLister(ctx, db, sender, nil)
}

// DispararComLister é Disparar com um lister injetável para testes.
func DispararComLister(ctx context.Context, db *gorm.DB, sender Sender, lister Lister) (enviados int, pulados int) {
	if db == nil && lister == nil {
		log.Printf("[lembrete] sem banco e sem lister, nada a fazer")
		return 0, 0
	}
	var configs []repo.Configuracao
	var err error
	if lister != nil {
		configs, err = lister.ListConfiguracoesComLembrete(ctx, db)
	} else {
		configs, err = repo.ListConfiguracoesComLembrete(ctx, db)
	}
	if err != nil {
		log.Printf("[lembrete] ListConfiguracoesComLembrete: %v", err)
		return 0, 0
	}
	now := time.Now()
	for _, cfg := range configs {
		antecedencia := cfg.AntecedenciaLembrete
		if antecedencia <= 0 {
			antecedencia = 24
		}
		ate := now.Add(time.Duration(antecedencia) * time.Hour)
		var rows []repo.LembreteRow
		if lister != nil {
			rows, err = lister.ListSessoesParaLembrete(ctx, db, cfg.PsicologoID, now, ate)
		} else {
			rows, err = repo.ListSessoesParaLembrete(ctx, db, cfg.PsicologoID, now, ate)
		}
		if err != nil {
			log.Printf("[lembrete] ListSessoesParaLembrete psicologo=%s: %v", cfg.PsicologoID, err)
			continue
		}
		if sender == nil {
			log.Printf("[lembrete] WhatsApp não configurado, %d lembretes não enviados (psicologo=%s)", len(rows), cfg.PsicologoID)
			pulados += len(rows)
			continue
		}
		for _, r := range rows {
			dataStr := r.DataSessao.Format("02/01/2006")
			horaStr := r.DataSessao.Format("15:04")
			if err := sender.SendLembrete(r.Telefone, r.PacienteNome, dataStr, horaStr); err != nil {
				log.Printf("[lembrete] falha sessao=%s telefone=%s: %v", r.SessaoID, r.Telefone, err)
				pulados++
				continue
			}
			enviados++
			log.Printf("[lembrete] enviado sessao=%s para %s", r.SessaoID, r.Telefone)
		}
	}
	return enviados, pulados
}

// DefaultSender devolve um cliente Twilio, ou nil se não configurado.
func DefaultSender(accountSid, authToken, from string) Sender {
	if accountSid == "" || authToken == "" || from == "" {
		return nil
	}
	return whatsapp.NewClient(whatsapp.Config{
		AccountSid: accountSid,
		AuthToken:  authToken,
		From:       from,
	})
}
