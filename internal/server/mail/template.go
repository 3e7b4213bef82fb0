package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

const verifySubject = "Verify Your Account - Emotify"
const newCodeSubject = "New Verification Code - Emotify"

var otpTemplate = template.Must(template.New("otp").Parse(`
<div style="font-family: Helvetica, Arial, sans-serif; line-height: 2">
  <div style="margin: 40px auto; width: 70%; padding: 20px 0">
    <div style="border-bottom: 1px solid #eee">
      <span style="font-size: 1.4em; color: #00466a; font-weight: 600">Emotify</span>
    </div>
    <p style="font-size: 1.1em">Hi, <b>{{.Username}}</b></p>
    <p>{{.Intro}}</p>
    <h2 style="background: #00466a; margin: 0 auto; width: max-content; padding: 0 10px; color: #fff; border-radius: 4px;">{{.Code}}</h2>
    <p style="font-size: 0.9em;">Regards,<br />Emotify Team</p>
  </div>
</div>
`))

type otpMailData struct {
	Username string
	Intro    string
	Code     string
}

func renderOTPMail(username, intro, code string) (html string, text string, err error) {
	var buf bytes.Buffer
	if err := otpTemplate.Execute(&buf, otpMailData{Username: username, Intro: intro, Code: code}); err != nil {
		return "", "", fmt.Errorf("render otp mail: %w", err)
	}
	return buf.String(), fmt.Sprintf("Your OTP is: %s", code), nil
}
