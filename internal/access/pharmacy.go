package access

import (
	"github.com/teryaq/pharmacy-backend/internal"
)

// PharmacyOf returns the subject's pharmacy, or ErrNoPharmacy for users outside any pharmacy.
func PharmacyOf(s *Subject) (int64, error) {
	if s == nil || s.PharmacyID == nil {
		return 0, internal.ErrNoPharmacy
	}
	return *s.PharmacyID, nil
}

// CheckPharmacy is the attribute check behind pharmacy-scoped resources.
func CheckPharmacy(s *Subject, pharmacyID int64) error {
	current, err := PharmacyOf(s)
	if err != nil {
		return err
	}
	if current != pharmacyID {
		return internal.ErrPharmacyAccess
	}
	return nil
}

// CanAccessPharmacy lets platform admins through and scopes everyone else to their pharmacy.
func CanAccessPharmacy(s *Subject, pharmacyID int64) error {
	if s != nil && s.InRole(RolePlatformAdmin) {
		return nil
	}
	return CheckPharmacy(s, pharmacyID)
}

// CanManagePharmacyResource allows admins, and pharmacy managers within their own pharmacy.
func CanManagePharmacyResource(s *Subject, pharmacyID int64) error {
	if s == nil {
		return internal.ErrAccessDenied
	}
	if s.InRole(RolePlatformAdmin) {
		return nil
	}
	if !s.InRole(RolePharmacyManager) {
		return internal.ErrAccessDenied
	}
	return CheckPharmacy(s, pharmacyID)
}

// CanRemoveOwnedResource allows admins, and the creator within their own pharmacy.
func CanRemoveOwnedResource(s *Subject, ownerID, pharmacyID int64) error {
	if s == nil {
		return internal.ErrAccessDenied
	}
	if s.InRole(RolePlatformAdmin) {
		return nil
	}
	if s.ID != ownerID {
		return internal.ErrAccessDenied
	}
	return CheckPharmacy(s, pharmacyID)
}
