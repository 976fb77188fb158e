package app

import (
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
)

// SetHostIdentity overrides the host identity used for master key derivation.
// It must be called before the first access to MasterKeyProvider.
func (c *Container) SetHostIdentity(identity cryptoService.HostIdentity) {
	c.hostIdentity = identity
}

// HostIdentity returns the source of host-specific key material.
func (c *Container) HostIdentity() cryptoService.HostIdentity {
	c.hostIdentityInit.Do(func() {
		if c.hostIdentity == nil {
			c.hostIdentity = cryptoService.NewMachineIdentity()
		}
	})
	return c.hostIdentity
}

// MasterKeyProvider returns the lazily derived master key provider.
// The key itself is only derived on the first vault operation.
func (c *Container) MasterKeyProvider() *cryptoService.LazyMasterKeyProvider {
	c.masterKeyProviderInit.Do(func() {
		c.masterKeyProvider = c.initMasterKeyProvider()
	})
	return c.masterKeyProvider
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// SecretCodec returns the codec sealing vault payloads.
func (c *Container) SecretCodec() cryptoService.Codec {
	c.secretCodecInit.Do(func() {
		c.secretCodec = cryptoService.NewSecretCodec(c.AEADManager())
	})
	return c.secretCodec
}

// AsymmetricService returns the stateless asymmetric toolkit.
func (c *Container) AsymmetricService() cryptoService.AsymmetricService {
	c.asymmetricServiceInit.Do(func() {
		c.asymmetricService = cryptoService.NewRSAService(c.config.VaultKDFIterations)
	})
	return c.asymmetricService
}

// initMasterKeyProvider creates the provider around a deriver bound to the host
// identity and configured application label.
func (c *Container) initMasterKeyProvider() *cryptoService.LazyMasterKeyProvider {
	deriver := cryptoService.NewMasterKeyDeriver(
		c.HostIdentity(),
		c.config.VaultAppLabel,
		c.config.VaultKDFIterations,
	)
	return cryptoService.NewLazyMasterKeyProvider(deriver, c.Logger())
}
