package registry

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"liyu1981.xyz/device-gateway-service/pkg/common"
	"liyu1981.xyz/device-gateway-service/pkg/models"
)

// register implements the registration protocol: authenticate the caller,
// resolve or create the device row, then ensure the ownership edge exists.
//
// Device secrets are trust-on-first-use: the first caller to register a given
// external device id binds its secret, and every later registration (any
// user) must present the same secret. This is a known weakness of the
// protocol, kept deliberately; see DESIGN.md.
func (r *Registry) register(token string, input *RegisterInput) error {
	logger := common.GetLoggerWith(
		common.LoggerNameRegistryCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryRegister),
	)

	if token == "" {
		return ErrMissingCredential
	}

	claims, err := r.Verifier.Verify(token)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}

	device, err := r.resolveDevice(input)
	if err != nil {
		return err
	}

	logger.Info("Resolved device for registration",
		zap.String("device_id", device.DeviceID),
		zap.Int64("user_id", claims.UserID))

	if err := r.linkOwner(claims.UserID, device.ID); err != nil {
		return err
	}

	logger.Info("Device registration complete",
		zap.String("device_id", device.DeviceID),
		zap.Int64("user_id", claims.UserID))

	return nil
}

// resolveDevice looks up the device by its external id, creating the row on
// first registration. A duplicate-key failure on create means a concurrent
// first registration won the race; the winner's row is authoritative and the
// presented secret is verified against it like any later registration.
func (r *Registry) resolveDevice(input *RegisterInput) (*models.Device, error) {
	var device models.Device
	err := r.Db.Conn.First(&device, "device_id = ?", input.DeviceID).Error
	if err == nil {
		return r.checkSecret(&device, input.DeviceSecretKey)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("looking up device: %w", err)
	}

	digest, err := r.Hasher.Hash(input.DeviceSecretKey)
	if err != nil {
		return nil, fmt.Errorf("hashing device secret: %w", err)
	}

	fresh := models.Device{
		DeviceID:    input.DeviceID,
		SecretHash:  digest,
		MonitorItem: input.MonitorItem,
	}
	if input.CustomName != "" {
		fresh.CustomName = &input.CustomName
	}
	if input.Latitude != "" && input.Longitude != "" {
		fresh.Latitude = &input.Latitude
		fresh.Longitude = &input.Longitude
	}

	if err := r.Db.Conn.Create(&fresh).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.Device
			if rerr := r.Db.Conn.First(&existing, "device_id = ?", input.DeviceID).Error; rerr != nil {
				return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, rerr)
			}
			return r.checkSecret(&existing, input.DeviceSecretKey)
		}
		return nil, fmt.Errorf("creating device: %w", err)
	}

	// read back the just-created row; a miss here is a storage
	// inconsistency, not a client error
	var created models.Device
	if err := r.Db.Conn.First(&created, "device_id = ?", input.DeviceID).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	return &created, nil
}

// checkSecret verifies the presented secret against the stored digest. A
// mismatch reports the same error family as a bad token so an
// unauthenticated caller cannot distinguish "device exists" from "secret
// wrong".
func (r *Registry) checkSecret(device *models.Device, secret string) (*models.Device, error) {
	ok, err := r.Hasher.Verify(secret, device.SecretHash)
	if err != nil || !ok {
		return nil, ErrInvalidDeviceSecret
	}
	return device, nil
}

// linkOwner ensures the (user, device) edge exists. The composite unique
// index makes the insert race-safe: a duplicate-key failure means another
// request created the edge first, which is success here.
func (r *Registry) linkOwner(userID int64, deviceID uint) error {
	var edge models.DeviceOwner
	err := r.Db.Conn.First(&edge, "user_id = ? AND device_id = ?", userID, deviceID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("looking up ownership: %w", err)
	}

	edge = models.DeviceOwner{UserID: userID, DeviceID: deviceID}
	if err := r.Db.Conn.Create(&edge).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("creating ownership: %w", err)
	}
	return nil
}

type IRegistrarImpl struct {
	registry *Registry
}

func (ir *IRegistrarImpl) Register(token string, input *RegisterInput) error {
	return ir.registry.register(token, input)
}

func (r *Registry) GetIRegistrar() IRegistrar {
	return &IRegistrarImpl{registry: r}
}
