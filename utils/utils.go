package utils

import (
	"strings"

	"github.com/jfrog/gofrog/datastructures"
)

// UniqueUnion returns a new slice that contains elements from both inputs without duplicates.
func UniqueUnion[T comparable](arr []T, others ...T) []T {
	uniqueSet := datastructures.MakeSet[T]()
	var result []T
	for _, item := range arr {
		if uniqueSet.Exists(item) {
			continue
		}
		uniqueSet.Add(item)
		result = append(result, item)
	}
	for _, item := range others {
		if exist := uniqueSet.Exists(item); !exist {
			uniqueSet.Add(item)
			result = append(result, item)
		}
	}
	return result
}

// ToEnvVarsMap converts "KEY=VALUE" pairs, as returned by os.Environ, into a map.
func ToEnvVarsMap(env []string) map[string]string {
	vars := make(map[string]string, len(env))
	for _, entry := range env {
		key, value, found := strings.Cut(entry, "=")
		if found {
			vars[key] = value
		}
	}
	return vars
}

// MergeMaps merges the given maps left to right, later maps override earlier ones.
func MergeMaps(maps ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, m := range maps {
		for key, value := range m {
			merged[key] = value
		}
	}
	return merged
}

// ToCommandEnvVars flattens a map into the "KEY=VALUE" form expected by exec.Cmd.
func ToCommandEnvVars(envVars map[string]string) []string {
	env := make([]string, 0, len(envVars))
	for key, value := range envVars {
		env = append(env, key+"="+value)
	}
	return env
}
