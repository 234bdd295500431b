package dto

type CreateWhitelistDomainRequest struct {
	Domain string `json:"domain" binding:"required,fqdn"`
}
