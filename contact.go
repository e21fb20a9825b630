package soopify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soopify/site/mail"
)

const mailTimeout = 10 * time.Second

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Contact string `json:"contact" validate:"required,max=200"`
	Org     string `json:"org" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

func (r *contactRequest) normalize() {
	trimAll(&r.Name, &r.Contact, &r.Org, &r.Message)
}

func (a *App) handleContact(c echo.Context) error {
	ip := c.RealIP()
	if a.limiter != nil && !a.limiter.Check(ip) {
		a.metrics.contactSubmissions.WithLabelValues("limited").Inc()
		return tooManyRequests()
	}

	var req contactRequest
	if err := bindJSON(c, &req, msgMissingFields); err != nil {
		a.metrics.contactSubmissions.WithLabelValues("invalid").Inc()
		return err
	}

	inq := Inquiry{
		Name:    req.Name,
		Contact: req.Contact,
		Org:     req.Org,
		Message: req.Message,
	}
	if err := a.Store.CreateInquiry(c.Request().Context(), &inq); err != nil {
		a.metrics.contactSubmissions.WithLabelValues("error").Inc()
		return internalError(msgRequestFailed, err)
	}
	if a.limiter != nil {
		a.limiter.Record(ip)
	}
	a.metrics.contactSubmissions.WithLabelValues("stored").Inc()

	// The inquiry is stored; a failed notification only gets logged.
	if err := a.notifyInquiry(c.Request().Context(), inq); err != nil {
		c.Logger().Warnf("contact notification for inquiry %s failed: %v", inq.ID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

var inquiryHTML = template.Must(template.New("inquiry").Parse(`<h2>{{.Site}} 상담 요청</h2>
<p><strong>담당자 성함:</strong> {{.Name}}</p>
<p><strong>이메일 / 연락처:</strong> {{.Contact}}</p>
<p><strong>기관 / 회사 / 학교명:</strong> {{.Org}}</p>
<p><strong>문의 내용:</strong></p>
<p style="white-space: pre-line;">{{.Message}}</p>
<hr />
<p>본 메일은 {{.URL}} 상담 요청 폼에서 자동 발송되었습니다.</p>
`))

var inquiryText = texttemplate.Must(texttemplate.New("inquiry").Parse(`{{.Site}} 상담 요청

담당자 성함: {{.Name}}
이메일 / 연락처: {{.Contact}}
기관 / 회사 / 학교명: {{.Org}}

문의 내용:
{{.Message}}

--
본 메일은 {{.URL}} 상담 요청 폼에서 자동 발송되었습니다.
`))

type inquiryMailData struct {
	Site    string
	URL     string
	Name    string
	Contact string
	Org     string
	Message string
}

// inquiryMessage builds the notification e-mail for inq.
func (a *App) inquiryMessage(inq Inquiry) (mail.Message, error) {
	data := inquiryMailData{
		Site:    a.Config.Name,
		URL:     a.Config.URL,
		Name:    inq.Name,
		Contact: inq.Contact,
		Org:     inq.Org,
		Message: inq.Message,
	}
	if data.Org == "" {
		data.Org = "-"
	}
	var htmlBody, textBody bytes.Buffer
	if err := inquiryHTML.Execute(&htmlBody, data); err != nil {
		return mail.Message{}, err
	}
	if err := inquiryText.Execute(&textBody, data); err != nil {
		return mail.Message{}, err
	}
	return mail.Message{
		From:    a.Config.Mail.From,
		To:      a.Config.Mail.To,
		Subject: fmt.Sprintf("[%s 상담요청] %s님 문의", a.Config.Name, strings.Join(strings.Fields(inq.Name), " ")),
		HTML:    htmlBody.String(),
		Text:    textBody.String(),
	}, nil
}

func (a *App) notifyInquiry(ctx context.Context, inq Inquiry) error {
	msg, err := a.inquiryMessage(inq)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	return a.Mailer.Send(ctx, msg)
}
