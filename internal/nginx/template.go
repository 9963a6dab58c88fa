package nginx

import "strings"

// Template tokens. Custom templates may use any of them.
const (
	TokenDomain   = "{{domain}}"
	TokenPort     = "{{port}}"
	TokenCertPath = "{{cert_path}}"
	TokenKeyPath  = "{{key_path}}"
)

// DefaultTemplate terminates TLS on 443 and proxies to the local backend.
// Plain HTTP on port 80 redirects to HTTPS.
const DefaultTemplate = `server {
    listen 80;
    listen [::]:80;
    server_name {{domain}};

    return 301 https://$host$request_uri;
}

server {
    listen 443 ssl;
    listen [::]:443 ssl;
    http2 on;
    server_name {{domain}};

    ssl_certificate {{cert_path}};
    ssl_certificate_key {{key_path}};
    ssl_protocols TLSv1.2 TLSv1.3;

    access_log /var/log/nginx/{{domain}}.access.log;
    error_log /var/log/nginx/{{domain}}.error.log;

    location / {
        proxy_pass http://127.0.0.1:{{port}};
        proxy_http_version 1.1;
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Forwarded-Proto https;
        proxy_set_header Upgrade $http_upgrade;
        proxy_set_header Connection "upgrade";
    }
}
`

// Values are substituted into a template.
type Values struct {
	Domain   string
	Port     string
	CertPath string
	KeyPath  string
}

// Substitute replaces every occurrence of each token in text.
func Substitute(text string, v Values) string {
	return strings.NewReplacer(
		TokenDomain, v.Domain,
		TokenPort, v.Port,
		TokenCertPath, v.CertPath,
		TokenKeyPath, v.KeyPath,
	).Replace(text)
}
