package configs

import (
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

func (c MidtransConfig) Enabled() bool {
	return c.ServerKey != ""
}

func (c MidtransConfig) Environment() midtrans.EnvironmentType {
	if c.Production {
		return midtrans.Production
	}
	return midtrans.Sandbox
}

func NewMidtransSnapClient(cfg MidtransConfig) snap.Client {
	var client snap.Client
	client.New(cfg.ServerKey, cfg.Environment())
	return client
}

func NewMidtransCoreAPIClient(cfg MidtransConfig) coreapi.Client {
	var client coreapi.Client
	client.New(cfg.ServerKey, cfg.Environment())
	return client
}
