package email

import (
	"context"
	"fmt"
	"html"
	"net/url"

	"golang.org/x/time/rate"
)

// Mailer は認証フロー向けのメールを組み立てて送信する。
// プロバイダのレート制限を超えないよう、送信を全体で絞る。
type Mailer struct {
	sender  Sender
	baseURL string
	limiter *rate.Limiter
}

// NewMailer はMailerを生成する。
// baseURLはメール内リンクの生成に使用するフロントエンドのベースURL。
// sendRateは1秒あたりの送信数の上限。
func NewMailer(sender Sender, baseURL string, sendRate float64) *Mailer {
	return &Mailer{
		sender:  sender,
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(sendRate), 1),
	}
}

// SendVerificationEmail はメールアドレス確認メールを送信する。
// リンクは24時間で失効する。
func (m *Mailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	link := m.baseURL + "/verify-email?token=" + url.QueryEscape(token)
	body := fmt.Sprintf(`
		<h2>¡Bienvenido a FNDC, %s!</h2>
		<p>Gracias por registrarte. Para activar tu cuenta, haz clic en el siguiente enlace:</p>
		<p><a href="%s">Verificar mi correo electrónico</a></p>
		<p>Este enlace expira en 24 horas.</p>
		<p>Si no creaste esta cuenta, puedes ignorar este mensaje.</p>
	`, html.EscapeString(name), link)

	return m.sender.Send(ctx, to, "Verifica tu correo electrónico - FNDC", body)
}

// SendPasswordResetEmail はパスワードリセットメールを送信する。
// リンクは1時間で失効する。
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	link := m.baseURL + "/reset-password?token=" + url.QueryEscape(token)
	body := fmt.Sprintf(`
		<h2>Hola, %s</h2>
		<p>Recibimos una solicitud para restablecer tu contraseña. Haz clic en el siguiente enlace:</p>
		<p><a href="%s">Restablecer mi contraseña</a></p>
		<p>Este enlace expira en 1 hora.</p>
		<p>Si no solicitaste este cambio, puedes ignorar este mensaje.</p>
	`, html.EscapeString(name), link)

	return m.sender.Send(ctx, to, "Restablece tu contraseña - FNDC", body)
}
