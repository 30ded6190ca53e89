package mq_client

import (
	"io/ioutil"
	"os"
	"reflect"

	"gopkg.in/yaml.v2"
)

var MQCfg *MQClientConfig

type MQClientConfig struct {
	Subject struct {
		Commands string `yaml:"commands"`
		Events   string `yaml:"events"`
	} `yaml:"subject"`
	Queue struct {
		Engine string `yaml:"engine"`
	} `yaml:"queue"`
}

func ConfigPath() string {
	if path := os.Getenv("MQ_CONFIG"); path != "" {
		return path
	}

	return "config/mq.yml"
}

func ParseConfig(buf []byte) (*MQClientConfig, error) {
	c := &MQClientConfig{}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, err
	}

	return c, nil
}

func LoadConfig(path string) error {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}

	c, err := ParseConfig(buf)
	if err != nil {
		return err
	}

	MQCfg = c

	return nil
}

func GetSubject(id string) string {
	if subject, ok := FindElementStruct(&MQCfg.Subject, "yaml", id).(string); ok {
		return subject
	}

	return ""
}

func GetQueue(id string) string {
	if queue, ok := FindElementStruct(&MQCfg.Queue, "yaml", id).(string); ok {
		return queue
	}

	return ""
}

func FindElementStruct(i interface{}, tag_name string, tag_value string) interface{} {
	e := reflect.ValueOf(i).Elem()

	for i := 0; i < e.NumField(); i++ {
		valueField := e.Field(i)
		typeField := e.Type().Field(i)

		if tag_value == typeField.Tag.Get(tag_name) {
			return valueField.Interface()
		}
	}

	return nil
}
