package config

// TextractConfig shares the AWS_* variables with S3Config.
type TextractConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
}

func (c *TextractConfig) applyEnv() {
	setString(&c.Region, "AWS_REGION")
	setString(&c.AccessKey, "AWS_ACCESS_KEY")
	setString(&c.SecretKey, "AWS_SECRET_KEY")
}
