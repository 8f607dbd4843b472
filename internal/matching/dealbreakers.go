package matching

// PassesDealbreakers applies the hard mutual-exclusion rules. A candidate
// failing any rule is dropped before scoring; there are no partial scores.
// Every rule is checked in both directions, so the result is symmetric.
func PassesDealbreakers(seeker, candidate *Profile) bool {
	if !gendersCompatible(seeker, candidate) {
		return false
	}
	if !agesCompatible(seeker, candidate) {
		return false
	}
	if !healthCompatible(seeker, candidate) {
		return false
	}
	return true
}

// gendersCompatible requires the seeker to want the candidate's gender
// and the candidate to want the seeker's gender.
func gendersCompatible(seeker, candidate *Profile) bool {
	return seeker.WantGenders[candidate.Gender] && candidate.WantGenders[seeker.Gender]
}

// agesCompatible requires each party's age to fall inside the other's
// declared acceptable range.
func agesCompatible(seeker, candidate *Profile) bool {
	if candidate.Age < seeker.WantAgeFrom || candidate.Age > seeker.WantAgeTo {
		return false
	}
	if seeker.Age < candidate.WantAgeFrom || seeker.Age > candidate.WantAgeTo {
		return false
	}
	return true
}

// healthCompatible fails when either party discloses a condition the
// other has opted to reject.
func healthCompatible(seeker, candidate *Profile) bool {
	for _, condition := range HealthConditions {
		if seeker.HaveCondition[condition] && candidate.RejectCondition[condition] {
			return false
		}
		if candidate.HaveCondition[condition] && seeker.RejectCondition[condition] {
			return false
		}
	}
	return true
}
