package model

import (
	"errors"
	"fmt"
)

// ErrUnknownCode is returned when an enum value has no label.
var ErrUnknownCode = errors.New("unknown code")

// Code pairs an enum code with its display label.
type Code struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Experience levels in seniority order.
var ExperienceLevels = []Code{
	{Code: "EN", Label: "Entry Level"},
	{Code: "MI", Label: "Mid Level"},
	{Code: "SE", Label: "Senior"},
	{Code: "EX", Label: "Executive"},
}

// Employment types.
var EmploymentTypes = []Code{
	{Code: "FT", Label: "Full Time"},
	{Code: "PT", Label: "Part Time"},
	{Code: "CT", Label: "Contract"},
	{Code: "FL", Label: "Freelance"},
}

// Company sizes, smallest first.
var CompanySizes = []Code{
	{Code: "S", Label: "Small (<50)"},
	{Code: "M", Label: "Medium (50-250)"},
	{Code: "L", Label: "Large (250+)"},
}

// RemoteRatios holds the remote ratio domain; codes are the ratio in base 10.
var RemoteRatios = []Code{
	{Code: "0", Label: "On-site"},
	{Code: "50", Label: "Hybrid"},
	{Code: "100", Label: "Remote"},
}

var (
	experienceLabels = index(ExperienceLevels)
	employmentLabels = index(EmploymentTypes)
	sizeLabels       = index(CompanySizes)
	remoteLabels     = map[int]string{0: "On-site", 50: "Hybrid", 100: "Remote"}
)

func index(codes []Code) map[string]string {
	m := make(map[string]string, len(codes))
	for _, c := range codes {
		m[c.Code] = c.Label
	}
	return m
}

// ExperienceLabel maps an experience_level code to its label.
func ExperienceLabel(code string) (string, error) {
	return lookup(experienceLabels, ColExperienceLevel, code)
}

// EmploymentLabel maps an employment_type code to its label.
func EmploymentLabel(code string) (string, error) {
	return lookup(employmentLabels, ColEmploymentType, code)
}

// CompanySizeLabel maps a company_size code to its label.
func CompanySizeLabel(code string) (string, error) {
	return lookup(sizeLabels, ColCompanySize, code)
}

// RemoteLabel maps a remote_ratio value to its label.
func RemoteLabel(ratio int) (string, error) {
	if l, ok := remoteLabels[ratio]; ok {
		return l, nil
	}
	return "", fmt.Errorf("%s %d: %w", ColRemoteRatio, ratio, ErrUnknownCode)
}

func lookup(m map[string]string, col Column, code string) (string, error) {
	if l, ok := m[code]; ok {
		return l, nil
	}
	return "", fmt.Errorf("%s %q: %w", col, code, ErrUnknownCode)
}
